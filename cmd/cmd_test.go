package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/pianoscribe/hand"
	"github.com/jsphweid/pianoscribe/midi"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/testdrv" // loops its out port back to its in port
)

func post(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func cMajor() []model.Note {
	return []model.Note{
		model.MustNote(48, 0, 1, 80),
		model.MustNote(60, 0, 1, 80),
		model.MustNote(64, 0, 1, 80),
		model.MustNote(67, 0, 1, 80),
	}
}

func TestHandleTranscribe(t *testing.T) {
	w := post(t, HandleTranscribe, "/transcribe", model.TranscribeRequest{Notes: cMajor(), Tempo: 100})
	require.Equal(t, http.StatusOK, w.Code)

	var res model.TranscribeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	assert.Len(t, res.Right.Notes, 3)
	assert.Len(t, res.Left.Notes, 1)
	assert.Equal(t, 100.0, res.Right.Tempo)
	require.Len(t, res.Chords, 1)
	assert.Equal(t, "major", res.Chords[0].Type)
	// four notes at once and a 19 semitone stretch
	assert.Equal(t, "intermediate", res.Before.Level)
	assert.Nil(t, res.After)
}

func TestHandleTranscribeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body any
	}{
		{"negative start", model.TranscribeRequest{Notes: []model.Note{{Pitch: 60, Start: -1, End: 1, Velocity: 64}}}},
		{"end before start", model.TranscribeRequest{Notes: []model.Note{{Pitch: 60, Start: 2, End: 1, Velocity: 64}}}},
		{"unknown grid", model.TranscribeRequest{Notes: cMajor(), Options: model.TranscribeOptions{Grid: "64th"}}},
		{"unknown target", model.TranscribeRequest{Notes: cMajor(), Options: model.TranscribeOptions{Target: "virtuoso"}}},
		{"pitch out of range", map[string]any{"notes": []map[string]any{{"pitch": 300, "start": 0, "end": 1, "velocity": 64}}}},
		{"not an object", "hello"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := post(t, HandleTranscribe, "/transcribe", c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var res model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestHandleAnalyze(t *testing.T) {
	w := post(t, HandleAnalyze, "/analyze", model.TranscribeRequest{Notes: cMajor()})
	require.Equal(t, http.StatusOK, w.Code)

	var res model.DifficultyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 4, res.MaxSimultaneous)
	assert.Equal(t, 19, res.MaxStretch)
	assert.Equal(t, "intermediate", res.Level)
	assert.Equal(t, 2, res.Scores["intermediate"])
}

func TestRouterOnlyAcceptsPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transcribe", nil)
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func writeSample(t *testing.T, dir, name string) string {
	right, err := model.NewPianoRoll([]model.Note{
		model.MustNote(72, 0, 0.5, 80),
		model.MustNote(76, 0.5, 1, 80),
	}, 120, model.CommonTime, 0)
	require.NoError(t, err)
	left, err := right.WithNotes([]model.Note{model.MustNote(48, 0, 1, 80)})
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, midi.WriteFile(path, midi.HandParts(right, left)))
	return path
}

func TestTranscribeDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeSample(t, in, "one.mid")
	writeSample(t, in, "two.mid")
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.mid"), []byte("not midi"), 0666))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, transcribe(cmd, in, out))

	assert.FileExists(t, filepath.Join(out, "one.piano.mid"))
	assert.FileExists(t, filepath.Join(out, "two.piano.mid"))
	assert.Contains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "transcribed 2 of 3 files")

	roll, _, err := midi.Load(filepath.Join(out, "one.piano.mid"), midi.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, roll.Len())
}

func TestInspectAndAnalyze(t *testing.T) {
	path := writeSample(t, t.TempDir(), "song.mid")

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, path))
	assert.Contains(t, buf.String(), "notes (3 of 3)")
	assert.Contains(t, buf.String(), "C3 C5")

	buf.Reset()
	require.NoError(t, analyze(&buf, path))
	assert.Contains(t, buf.String(), "level beginner")
	assert.True(t, strings.Contains(buf.String(), "hands"))
}

func TestDescribeHeld(t *testing.T) {
	held := &heldKeys{pressed: map[uint8]uint8{}}
	held.press(60, 90)
	held.press(64, 90)
	held.press(67, 90)
	held.press(40, 90)
	held.release(40)

	a, err := hand.New(hand.DefaultConfig())
	require.NoError(t, err)
	var buf bytes.Buffer
	describeHeld(&buf, held, a)
	assert.Contains(t, buf.String(), "C major")
	assert.Contains(t, buf.String(), "L C4 | R E4 G4")
}

// lockedBuffer is written from the debounce timer goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestListenNamesHeldChord(t *testing.T) {
	defer gomidi.CloseDriver()
	in, err := gomidi.InPort(0)
	require.NoError(t, err)
	outPort, err := gomidi.OutPort(0)
	require.NoError(t, err)

	var buf lockedBuffer
	stop, err := startListening(&buf, in)
	require.NoError(t, err)
	defer stop()

	send, err := gomidi.SendTo(outPort)
	require.NoError(t, err)
	for _, key := range []uint8{48, 64, 67} {
		require.NoError(t, send(gomidi.NoteOn(0, key, 90)))
	}

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "C major")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, buf.String(), "L C3 | R E4 G4")
}
