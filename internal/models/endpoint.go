package models

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// HTTPMethod is one of the verbs an endpoint can be declared with
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

// ParseHTTPMethod validates a declared method name
func ParseHTTPMethod(s string) (HTTPMethod, error) {
	switch m := HTTPMethod(s); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// EndpointRecord is one declared endpoint
type EndpointRecord struct {
	Name           string         // unique key from the declaration map
	Path           string         // slash separated, with {param} segments
	Method         HTTPMethod     // request verb
	InputType      string         // empty when the endpoint takes no input
	OutputType     string         // empty when the endpoint returns nothing typed
	Implementation Implementation // how the endpoint is served
	Line           int            // line of the declaration, 0 when recovered textually
}

// HasInput reports whether the endpoint declares an input type
func (e *EndpointRecord) HasInput() bool {
	return e.InputType != ""
}

// HasOutput reports whether the endpoint declares an output type
func (e *EndpointRecord) HasOutput() bool {
	return e.OutputType != ""
}

// Store returns the store configuration when the endpoint is store backed
func (e *EndpointRecord) Store() (*StoreBacked, bool) {
	s, ok := e.Implementation.(*StoreBacked)
	return s, ok
}

// Compute returns the handler configuration when the endpoint is compute backed
func (e *EndpointRecord) Compute() (*ComputeBacked, bool) {
	c, ok := e.Implementation.(*ComputeBacked)
	return c, ok
}

// Implementation is either *ComputeBacked or *StoreBacked
type Implementation interface {
	implementation()
}

// DefaultEntryFunction is the handler looked up when none is declared
const DefaultEntryFunction = "Handler"

// ComputeBacked endpoints are served by a handler function
type ComputeBacked struct {
	EntrySourcePath string // relative to the declaration module
	EntryFunction   string
	QueueBacked     bool
}

func (*ComputeBacked) implementation() {}

// Function returns the entry function name, defaulting to Handler
func (c *ComputeBacked) Function() string {
	if c.EntryFunction == "" {
		return DefaultEntryFunction
	}
	return c.EntryFunction
}

// StoreAction is the DynamoDB operation behind a store-backed endpoint
type StoreAction string

const (
	ActionGetItem StoreAction = "GetItem"
	ActionQuery   StoreAction = "Query"
)

// DefaultQueryLimit is used when a Query endpoint declares no DefaultLimit
const DefaultQueryLimit = 25

// StoreBacked endpoints map directly onto a DynamoDB call
type StoreBacked struct {
	Action                    StoreAction
	TableName                 string
	PartitionKey              string
	SortKey                   string
	IndexName                 string
	KeyConditionExpression    string
	FilterExpression          string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]types.AttributeValue
	DefaultLimit              int
	Limit                     int
	RequestTemplate           string
	ResponseTemplate          string
}

func (*StoreBacked) implementation() {}

// EffectiveDefaultLimit returns DefaultLimit or DefaultQueryLimit
func (s *StoreBacked) EffectiveDefaultLimit() int {
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return DefaultQueryLimit
}

// EndpointSet keeps endpoints in declaration order with unique names
type EndpointSet struct {
	records []*EndpointRecord
	index   map[string]int
}

// NewEndpointSet creates an empty set
func NewEndpointSet() *EndpointSet {
	return &EndpointSet{index: make(map[string]int)}
}

// Add appends a record. Names must be unique.
func (s *EndpointSet) Add(record *EndpointRecord) error {
	if record == nil || record.Name == "" {
		return fmt.Errorf("endpoint has no name")
	}
	if _, exists := s.index[record.Name]; exists {
		return fmt.Errorf("duplicate endpoint %q", record.Name)
	}
	s.index[record.Name] = len(s.records)
	s.records = append(s.records, record)
	return nil
}

// Get looks up an endpoint by name
func (s *EndpointSet) Get(name string) (*EndpointRecord, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// All returns the records in declaration order
func (s *EndpointSet) All() []*EndpointRecord {
	return s.records
}

// Len returns the number of endpoints
func (s *EndpointSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Names returns the endpoint names in declaration order
func (s *EndpointSet) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name
	}
	return names
}

// TypeNames returns every distinct input and output type name, first use first
func (s *EndpointSet) TypeNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range s.records {
		for _, name := range []string{r.InputType, r.OutputType} {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
