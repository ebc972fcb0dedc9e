package cmd

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/pianoscribe/constants"
	"github.com/jsphweid/pianoscribe/difficulty"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/pipeline"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// request bodies above this are rejected
const maxBodyBytes = 8 << 20

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetAddr(), "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the pipeline over HTTP",
	Long: `Serves POST /transcribe and POST /analyze. Both take a JSON body of notes
in seconds plus tempo, meter and key, and /transcribe also takes pipeline
options.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve(serveAddr)
	},
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/transcribe", HandleTranscribe).Methods("POST")
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	return cors.Default().Handler(router)
}

func serve(addr string) {
	logrus.WithField("addr", addr).Info("serving")
	logrus.Fatal(http.ListenAndServe(addr, NewRouter()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not write response")
	}
}

// writeError answers bad input with 400 and anything else with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var consErr *model.ConstructionError
	var cfgErr *model.ConfigurationError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &consErr), errors.As(err, &cfgErr),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		status = http.StatusBadRequest
	}
	logrus.WithFields(logrus.Fields{"path": r.URL.Path, "status": status}).WithError(err).Warn("request failed")
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func readRequest(w http.ResponseWriter, r *http.Request) (model.TranscribeRequest, *model.PianoRoll, error) {
	var req model.TranscribeRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return req, nil, errors.Wrap(err, "could not decode request body")
	}
	roll, err := req.Roll()
	return req, roll, err
}

func HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	req, roll, err := readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := pipeline.FromRequest(req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := pipeline.Run(roll, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := uuid.New().String()
	logrus.WithFields(logrus.Fields{"id": id, "notes": roll.Len(), "chords": len(res.Chords)}).Info("transcribed")
	writeJSON(w, http.StatusOK, res.Response(id))
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, roll, err := readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, difficulty.Analyze(roll).Report())
}
