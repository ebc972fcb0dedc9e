package db

import (
	"strconv"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// DynamoDB caps BatchGetItem well above this, but metadata lookups are
// kept small.
const MaxBatch = 10

type Config struct {
	Endpoint      string
	Region        string
	MetadataTable string
	ReportTable   string
}

func DefaultConfig() Config {
	return Config{
		Endpoint:      "http://localhost:8000",
		Region:        "localhost",
		MetadataTable: "pianoscribe-metadata",
		ReportTable:   "pianoscribe-reports",
	}
}

type Store struct {
	client dynamodbiface.DynamoDBAPI
	config Config
}

func New(config Config) (*Store, error) {
	awsConfig := &aws.Config{Region: aws.String(config.Region)}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewWithClient(dynamodb.New(sess), config), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, config Config) *Store {
	return &Store{client: client, config: config}
}

func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	if v, ok := item[name]; ok && v.S != nil {
		return *v.S
	}
	return ""
}

// GetMidiMetadatas looks up titles and artists keyed by file name. Files
// without an entry are absent from the result.
func (s *Store) GetMidiMetadatas(filenames []string) (map[string]model.MidiMetadata, error) {
	if len(filenames) > MaxBatch {
		return nil, errors.Errorf("at most %d filenames per lookup, got %d", MaxBatch, len(filenames))
	}

	res := make(map[string]model.MidiMetadata)
	if len(filenames) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(filename),
		}
		keys = append(keys, key)
	}

	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			s.config.MetadataTable: {Keys: keys},
		},
	}
	dbres, err := s.client.BatchGetItem(input)
	if err != nil {
		return nil, errors.Wrap(err, "batch get from DynamoDB")
	}

	for _, v := range dbres.Responses[s.config.MetadataTable] {
		var m model.MidiMetadata
		if v["Year"] != nil && v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			m.Year = uint(year)
		}
		m.Artist = stringAttr(v, "Artist")
		m.Release = stringAttr(v, "Release")
		m.Title = stringAttr(v, "Title")
		res[stringAttr(v, "PK")] = m
	}

	return res, nil
}

// GetMidiMetadatasBatched splits any number of names into lookups of
// MaxBatch.
func (s *Store) GetMidiMetadatasBatched(filenames []string) (map[string]model.MidiMetadata, error) {
	res := make(map[string]model.MidiMetadata)
	for i := 0; i < len(filenames); i += MaxBatch {
		end := i + MaxBatch
		if end > len(filenames) {
			end = len(filenames)
		}
		batch, err := s.GetMidiMetadatas(filenames[i:end])
		if err != nil {
			return nil, err
		}
		for k, v := range batch {
			res[k] = v
		}
	}
	return res, nil
}

func (s *Store) PutReport(report model.Report) error {
	item, err := dynamodbattribute.MarshalMap(report)
	if err != nil {
		return errors.Wrap(err, "marshalling report")
	}
	item["PK"] = &dynamodb.AttributeValue{S: aws.String(report.Filename)}

	_, err = s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.config.ReportTable),
		Item:      item,
	})
	return errors.Wrapf(err, "storing report for %s", report.Filename)
}
