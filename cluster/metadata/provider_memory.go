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
	"sync"

	"github.com/meridiandb/meridian/cluster/model"
)

// providerMemory keeps the cluster state in memory.
// Used for unit tests and local development.
type providerMemory struct {
	sync.Mutex

	cs      *model.ClusterState
	version Version
}

func NewProviderMemory() Provider {
	return &providerMemory{
		cs:      nil,
		version: NotExists,
	}
}

func (m *providerMemory) Close() error {
	return nil
}

func (m *providerMemory) Get() (cs *model.ClusterState, version Version, err error) {
	m.Lock()
	defer m.Unlock()
	return m.cs, m.version, nil
}

func (m *providerMemory) Store(cs *model.ClusterState, expectedVersion Version) (newVersion Version, err error) {
	m.Lock()
	defer m.Unlock()

	if expectedVersion != m.version {
		return NotExists, ErrMetadataBadVersion
	}

	m.cs = cs.Clone()
	m.version = incrVersion(m.version)
	return m.version, nil
}
