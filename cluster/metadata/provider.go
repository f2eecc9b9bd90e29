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
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/meridiandb/meridian/cluster/model"
)

type Version string

var (
	ErrMetadataNotInitialized = errors.New("metadata not initialized")
	ErrMetadataBadVersion     = errors.New("metadata bad version")
)

const NotExists Version = "-1"

// Provider stores the shared cluster state, guarded by a compare-and-swap
// version check on every update.
type Provider interface {
	io.Closer

	// Get returns the current cluster state, or nil if it was never initialized
	Get() (cs *model.ClusterState, version Version, err error)

	Store(cs *model.ClusterState, expectedVersion Version) (newVersion Version, err error)
}

func incrVersion(version Version) Version {
	i, err := strconv.ParseInt(string(version), 10, 64)
	if err != nil {
		return ""
	}
	i++
	return Version(strconv.FormatInt(i, 10))
}
