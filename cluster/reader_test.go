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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
)

func TestMetadataStateReader(t *testing.T) {
	provider := metadata.NewProviderMemory()
	reader := NewMetadataStateReader(provider)

	// no snapshot before initialization
	assert.Nil(t, reader.ClusterState())

	cs := model.NewClusterState()
	cs.LiveNodes = []model.NodeID{"n1"}
	_, err := provider.Store(cs, metadata.NotExists)
	assert.NoError(t, err)

	res := reader.ClusterState()
	assert.NotNil(t, res)
	assert.Equal(t, []model.NodeID{"n1"}, res.LiveNodes)
}

type failingProvider struct {
	metadata.Provider
}

func (*failingProvider) Get() (*model.ClusterState, metadata.Version, error) {
	return nil, metadata.NotExists, errors.New("metadata store unreachable")
}

func TestMetadataStateReader_FetchFailure(t *testing.T) {
	reader := NewMetadataStateReader(&failingProvider{})

	// a persistently failing fetch degrades to an absent snapshot
	assert.Nil(t, reader.ClusterState())
}
