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

package initialize

import (
	"github.com/spf13/cobra"

	"github.com/meridiandb/meridian/cluster"
	"github.com/meridiandb/meridian/cmd/common"
)

var (
	metaOpts = common.NewMetadataOptions()

	Cmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize an empty cluster state",
		RunE:  exec,
	}
)

func init() {
	common.AddMetadataFlags(Cmd, &metaOpts)
}

func exec(*cobra.Command, []string) error {
	if err := metaOpts.Validate(); err != nil {
		return err
	}

	provider, err := metaOpts.NewProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	return cluster.InitMetadata(provider)
}
