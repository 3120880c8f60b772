// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mpi provides collective operators over a pluggable communicator,
// so a model built on one rank computes global sums while its derivative
// graphs replay the same collectives.
package mpi

import (
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/mpi"
)

// Communicator is the collective transport an allreduce node runs over.
type Communicator = mpi.Communicator

// Serial is the single-rank communicator: every collective is the
// identity.
type Serial = mpi.Serial

// Allreduce builds an allreduce node over comm.
func Allreduce(x any, comm Communicator) (*core.Symbol, error) {
	return mpi.Allreduce(x, comm)
}
