// Package apidecl holds the types an endpoint declaration module is written
// against. apigen never imports a declaration module; it reads the source of a
// package-level variable named Endpoints:
//
//	var Endpoints = apidecl.Endpoints{
//		"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
//			Path:   "/users/{id}",
//			Method: "GET",
//			Store: &apidecl.StoreBacked{
//				Action:       apidecl.GetItem,
//				TableName:    "users",
//				PartitionKey: "USER#$input.params('id')",
//				SortKey:      "PROFILE",
//			},
//		},
//		"createUser": apidecl.Endpoint[apidecl.POST, CreateUserInput, User]{
//			Path:    "/users",
//			Method:  "POST",
//			Compute: &apidecl.ComputeBacked{Entry: "handlers/create_user.go"},
//		},
//	}
//
// Only literal values and package-level constants or variables bound to
// literals are understood by the generator. Function calls in these fields are
// ignored.
package apidecl

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// Method is implemented by the HTTP method marker types
type Method interface {
	HTTPMethod() string
}

// HTTP method markers used as the first type argument of Endpoint
type (
	GET    struct{}
	POST   struct{}
	PUT    struct{}
	DELETE struct{}
)

func (GET) HTTPMethod() string    { return "GET" }
func (POST) HTTPMethod() string   { return "POST" }
func (PUT) HTTPMethod() string    { return "PUT" }
func (DELETE) HTTPMethod() string { return "DELETE" }

// None marks an endpoint without an input or output type
type None struct{}

// Descriptor is implemented by every Endpoint instantiation
type Descriptor interface {
	descriptor()
}

// Endpoints maps endpoint names to their descriptors
type Endpoints map[string]Descriptor

// Endpoint describes one API operation. In and Out name the request and
// response payload types. Exactly one of Compute or Store must be set.
type Endpoint[M Method, In, Out any] struct {
	Path    string
	Method  string
	Compute *ComputeBacked
	Store   *StoreBacked
}

func (Endpoint[M, In, Out]) descriptor() {}

// Resources is handed to a compute-backed endpoint's Bind function by the
// provisioning layer
type Resources interface {
	Grant(resource string, actions ...string)
	Env(key, value string)
}

// ComputeBacked endpoints are served by a handler function
type ComputeBacked struct {
	// Entry is the handler source file, relative to the declaration module
	Entry string
	// Function is the entry function name inside Entry, Handler by default
	Function string
	// Queue puts the handler behind a queue
	Queue bool
	// Bind is opaque to the generator
	Bind func(Resources)
}

// Action is the DynamoDB operation a store-backed endpoint performs
type Action string

const (
	GetItem Action = "GetItem"
	Query   Action = "Query"
)

// StoreBacked endpoints are served by a direct DynamoDB integration
type StoreBacked struct {
	Action                    Action
	TableName                 string
	PartitionKey              string
	SortKey                   string
	IndexName                 string
	KeyConditionExpression    string
	FilterExpression          string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]types.AttributeValue
	// DefaultLimit applies when the caller passes no limit query parameter
	DefaultLimit int
	// Limit fixes the page size and ignores the limit query parameter
	Limit int
	// RequestTemplate and ResponseTemplate replace the generated templates verbatim
	RequestTemplate  string
	ResponseTemplate string
}
