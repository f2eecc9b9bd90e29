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

package common

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/meridiandb/meridian/cluster/metadata"
)

type MetadataProviderImpl string

const (
	Memory    MetadataProviderImpl = "memory"
	File      MetadataProviderImpl = "file"
	Configmap MetadataProviderImpl = "configmap"
)

func (m *MetadataProviderImpl) String() string {
	return string(*m)
}

func (m *MetadataProviderImpl) Set(v string) error {
	switch i := MetadataProviderImpl(v); i {
	case Memory, File, Configmap:
		*m = i
		return nil
	}
	return errors.Errorf(`must be one of "memory", "file" or "configmap"`)
}

func (m *MetadataProviderImpl) Type() string {
	return "MetadataProviderImpl"
}

type MetadataOptions struct {
	ProviderImpl     MetadataProviderImpl
	FilePath         string
	K8SNamespace     string
	K8SConfigMapName string
}

func NewMetadataOptions() MetadataOptions {
	return MetadataOptions{
		ProviderImpl: File,
		FilePath:     "data/cluster-state.json",
	}
}

func AddMetadataFlags(cmd *cobra.Command, opts *MetadataOptions) {
	cmd.PersistentFlags().Var(&opts.ProviderImpl, "metadata", "Metadata provider implementation: file, configmap or memory")
	cmd.PersistentFlags().StringVar(&opts.FilePath, "file-cluster-state-path", opts.FilePath, "The path where the cluster state is stored when using 'file' provider")
	cmd.PersistentFlags().StringVar(&opts.K8SNamespace, "k8s-namespace", opts.K8SNamespace, "Kubernetes namespace for the cluster state configmap")
	cmd.PersistentFlags().StringVar(&opts.K8SConfigMapName, "k8s-configmap-name", opts.K8SConfigMapName, "ConfigMap name for the cluster state configmap")
}

func (o *MetadataOptions) Validate() error {
	if o.ProviderImpl == Configmap {
		if o.K8SNamespace == "" {
			return errors.New("k8s-namespace must be set with metadata=configmap")
		}
		if o.K8SConfigMapName == "" {
			return errors.New("k8s-configmap-name must be set with metadata=configmap")
		}
	}
	return nil
}

func (o *MetadataOptions) NewProvider() (metadata.Provider, error) {
	switch o.ProviderImpl {
	case Memory:
		return metadata.NewProviderMemory(), nil
	case File:
		return metadata.NewProviderFile(o.FilePath), nil
	case Configmap:
		return metadata.NewProviderConfigMap(o.K8SNamespace, o.K8SConfigMapName), nil
	}
	return nil, errors.Errorf("unknown metadata provider %q", o.ProviderImpl)
}
