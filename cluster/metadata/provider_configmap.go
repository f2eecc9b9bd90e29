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
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
	coreV1 "k8s.io/api/core/v1"
	k8sError "k8s.io/apimachinery/pkg/api/errors"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/meridiandb/meridian/cluster/model"
	"github.com/meridiandb/meridian/kubernetes"
)

type providerConfigMap struct {
	sync.Mutex
	kubernetes      k8s.Interface
	namespace, name string
}

func NewProviderConfigMap(namespace, name string) Provider {
	config := kubernetes.NewClientConfig()
	return &providerConfigMap{
		kubernetes: kubernetes.NewKubernetesClientset(config),
		namespace:  namespace,
		name:       name,
	}
}

func (m *providerConfigMap) Get() (cs *model.ClusterState, version Version, err error) {
	m.Lock()
	defer m.Unlock()
	return m.getWithoutLock()
}

func (m *providerConfigMap) getWithoutLock() (cs *model.ClusterState, version Version, err error) {
	cm, err := kubernetes.ConfigMaps(m.kubernetes).Get(m.namespace, m.name)
	if err != nil {
		if k8sError.IsNotFound(err) {
			err = nil
			version = NotExists
		}
		return
	}

	cs = &model.ClusterState{}
	if err = yaml.Unmarshal([]byte(cm.Data["state"]), cs); err != nil {
		return
	}
	version = Version(cm.ResourceVersion)
	return
}

func (m *providerConfigMap) Store(cs *model.ClusterState, expectedVersion Version) (version Version, err error) {
	m.Lock()
	defer m.Unlock()

	_, version, err = m.getWithoutLock()
	if err != nil {
		return
	}

	if version != expectedVersion {
		err = ErrMetadataBadVersion
		return
	}

	cm, err := kubernetes.ConfigMaps(m.kubernetes).Upsert(m.namespace, configMap(m.name, cs, expectedVersion))
	if err != nil {
		if k8sError.IsConflict(err) {
			err = ErrMetadataBadVersion
		}
		version = NotExists
		return
	}
	version = Version(cm.ResourceVersion)
	return
}

func (m *providerConfigMap) Close() error {
	return nil
}

func configMap(name string, cs *model.ClusterState, version Version) *coreV1.ConfigMap {
	bytes, err := yaml.Marshal(cs)
	if err != nil {
		slog.Error(
			"unable to marshal cluster state",
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	cm := &coreV1.ConfigMap{
		ObjectMeta: metaV1.ObjectMeta{Name: name},
		Data: map[string]string{
			"state": string(bytes),
		},
	}

	if version != NotExists {
		cm.ResourceVersion = string(version)
	}

	return cm
}
