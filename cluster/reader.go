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

package cluster

import (
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
)

const fetchRetries = 3

// StateReader hands out the current cluster-state snapshot.
// A nil snapshot means the state was not initialized yet.
type StateReader interface {
	ClusterState() *model.ClusterState
}

// metadataStateReader reads a fresh snapshot from the metadata provider on
// every call. Snapshots are never cached or diffed across calls.
type metadataStateReader struct {
	provider metadata.Provider
	log      *slog.Logger
}

func NewMetadataStateReader(provider metadata.Provider) StateReader {
	return &metadataStateReader{
		provider: provider,
		log:      slog.With(slog.String("component", "state-reader")),
	}
}

func (r *metadataStateReader) ClusterState() *model.ClusterState {
	var cs *model.ClusterState
	err := backoff.Retry(func() error {
		var err error
		cs, _, err = r.provider.Get()
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries))
	if err != nil {
		r.log.Warn(
			"Failed to fetch cluster state",
			slog.Any("error", err),
		)
		return nil
	}
	return cs
}
