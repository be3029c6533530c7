//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package graphset

import "github.com/sirupsen/logrus"

// Progress reports stage boundaries of long-running per-graph work. It is
// an injected collaborator so callers decide how (and whether) progress
// surfaces.
type Progress interface {
	Start(stage, graph string)
	Done(stage, graph string)
}

type nopProgress struct{}

func (nopProgress) Start(string, string) {}
func (nopProgress) Done(string, string)  {}

// LogProgress reports stage boundaries through a structured logger.
type LogProgress struct {
	Logger logrus.FieldLogger
}

func (p LogProgress) Start(stage, graph string) {
	p.Logger.WithFields(logrus.Fields{"stage": stage, "graph": graph}).
		Info("started")
}

func (p LogProgress) Done(stage, graph string) {
	p.Logger.WithFields(logrus.Fields{"stage": stage, "graph": graph}).
		Info("done")
}
