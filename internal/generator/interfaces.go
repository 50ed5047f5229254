package generator

import "github.com/toyz/apigen/internal/parser"

// TypeLookup reports which type names were copied into the interfaces package
type TypeLookup interface {
	Has(name string) bool
}

// HandlerAnalyzer reads the payload types of a handler entry function
type HandlerAnalyzer func(path, function string) (*parser.HandlerSignature, error)
