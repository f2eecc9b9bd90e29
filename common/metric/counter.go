// Copyright 2024 Meridian, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metric

import (
	"context"

	api "go.opentelemetry.io/otel/metric"
)

type Counter interface {
	Inc()
	Add(incr int)
}

type counter struct {
	sc    api.Int64Counter
	attrs api.MeasurementOption
}

func (c *counter) Inc() {
	c.Add(1)
}

func (c *counter) Add(incr int) {
	c.sc.Add(context.Background(), int64(incr), c.attrs)
}

func NewCounter(name string, description string, unit Unit, labels map[string]any) Counter {
	sc, err := meter.Int64Counter(name,
		api.WithUnit(string(unit)),
		api.WithDescription(description))
	fatalOnErr(err, name)
	return &counter{
		sc:    sc,
		attrs: getAttrs(labels),
	}
}
