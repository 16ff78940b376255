package hml

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrFuncMustBeSet     = errors.New("func must be set")
	ErrNoActivePipeline  = errors.New("no active pipeline, Enter must be called before registering")
	ErrUnknownPipeline   = errors.New("unknown pipeline")
	ErrUnknownRoutine    = errors.New("unknown inference routine")
)
