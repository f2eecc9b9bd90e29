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
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/juju/fslock"
	"github.com/pkg/errors"

	"github.com/meridiandb/meridian/cluster/model"
)

// providerFile keeps the cluster state in a local file,
// using a lock mechanism to prevent missing updates
type providerFile struct {
	path     string
	fileLock *fslock.Lock
}

type stateContainer struct {
	ClusterState *model.ClusterState `json:"clusterState"`
	Version      Version             `json:"version"`
}

func NewProviderFile(path string) Provider {
	return &providerFile{
		path:     path,
		fileLock: fslock.New(path),
	}
}

func (m *providerFile) Close() error {
	return nil
}

func (m *providerFile) Get() (cs *model.ClusterState, version Version, err error) {
	content, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotExists, nil
		}
		return nil, NotExists, err
	}

	if len(content) == 0 {
		return nil, NotExists, nil
	}

	sc := stateContainer{}
	if err = json.Unmarshal(content, &sc); err != nil {
		return nil, NotExists, err
	}

	return sc.ClusterState, sc.Version, nil
}

func (m *providerFile) Store(cs *model.ClusterState, expectedVersion Version) (newVersion Version, err error) {
	// Ensure directory exists
	parentDir := filepath.Dir(m.path)
	if _, err := os.Stat(parentDir); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(parentDir, 0755); err != nil {
				return NotExists, err
			}
		} else {
			return NotExists, err
		}
	}

	if err := m.fileLock.Lock(); err != nil {
		return "", errors.Wrap(err, "failed to acquire file lock")
	}
	defer func() {
		if err := m.fileLock.Unlock(); err != nil {
			slog.Warn(
				"Failed to release file lock on cluster state",
				slog.Any("error", err),
			)
		}
	}()

	_, existingVersion, err := m.Get()
	if err != nil {
		return NotExists, err
	}

	if expectedVersion != existingVersion {
		return NotExists, ErrMetadataBadVersion
	}

	newVersion = incrVersion(existingVersion)
	newContent, err := json.Marshal(stateContainer{
		ClusterState: cs,
		Version:      newVersion,
	})
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(m.path, newContent, 0640); err != nil {
		return NotExists, err
	}

	return newVersion, nil
}
