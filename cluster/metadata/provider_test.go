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

package metadata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/meridiandb/meridian/cluster/model"
	k8sTesting "github.com/meridiandb/meridian/kubernetes/testing"
)

var (
	_fake = func() *fake.Clientset {
		f := fake.NewSimpleClientset()
		f.PrependReactor("*", "*", k8sTesting.ResourceVersionSupport(f.Tracker()))
		return f
	}()
	providers = map[string]func(t *testing.T) Provider{
		"memory": func(t *testing.T) Provider {
			return NewProviderMemory()
		},
		"file": func(t *testing.T) Provider {
			return NewProviderFile(filepath.Join(t.TempDir(), "cluster-state.json"))
		},
		"configmap": func(t *testing.T) Provider {
			return &providerConfigMap{
				kubernetes: _fake,
				namespace:  "ns",
				name:       "n",
			}
		},
	}
)

func testState() *model.ClusterState {
	return &model.ClusterState{
		Collections: map[string]model.Collection{
			"orders": {
				ReplicationFactor: 2,
				Shards: map[string]model.Shard{
					"shard1": {
						State: model.ShardStateActive,
						Replicas: map[string]model.Replica{
							"r1": {
								ID:      "r1",
								NodeID:  "n1",
								BaseURL: "http://n1:8983",
								State:   model.ReplicaStateActive,
							},
						},
					},
				},
			},
		},
		LiveNodes: []model.NodeID{"n1"},
	}
}

func TestProvider(t *testing.T) {
	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			m := provider(t)

			res, version, err := m.Get()
			assert.NoError(t, err)
			assert.Equal(t, NotExists, version)
			assert.Nil(t, res)

			newVersion, err := m.Store(testState(), "")
			assert.ErrorIs(t, err, ErrMetadataBadVersion)
			assert.Equal(t, NotExists, newVersion)

			newVersion, err = m.Store(testState(), NotExists)
			assert.NoError(t, err)
			assert.EqualValues(t, Version("0"), newVersion)

			res, version, err = m.Get()
			assert.NoError(t, err)
			assert.EqualValues(t, Version("0"), version)
			assert.Equal(t, testState(), res)

			// stale writers must not clobber newer state
			_, err = m.Store(testState(), NotExists)
			assert.ErrorIs(t, err, ErrMetadataBadVersion)

			newVersion, err = m.Store(testState(), version)
			assert.NoError(t, err)
			assert.NotEqual(t, version, newVersion)

			assert.NoError(t, m.Close())
		})
	}
}
