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

package node

import (
	"github.com/spf13/cobra"

	"github.com/meridiandb/meridian/cluster"
	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
	"github.com/meridiandb/meridian/cmd/common"
)

var (
	metaOpts = common.NewMetadataOptions()

	Cmd = &cobra.Command{
		Use:   "node",
		Short: "Manage the live node set",
	}

	upCmd = &cobra.Command{
		Use:   "up <node-id>",
		Short: "Mark a node as live",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withProvider(func(provider metadata.Provider) error {
				return cluster.RegisterNode(provider, model.NodeID(args[0]))
			})
		},
	}

	downCmd = &cobra.Command{
		Use:   "down <node-id>",
		Short: "Remove a node from the live set",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withProvider(func(provider metadata.Provider) error {
				return cluster.UnregisterNode(provider, model.NodeID(args[0]))
			})
		},
	}
)

func init() {
	common.AddMetadataFlags(Cmd, &metaOpts)
	Cmd.AddCommand(upCmd)
	Cmd.AddCommand(downCmd)
}

func withProvider(f func(provider metadata.Provider) error) error {
	if err := metaOpts.Validate(); err != nil {
		return err
	}

	provider, err := metaOpts.NewProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	return f(provider)
}
