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
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type WaitOptions struct {
	Collection   string        `mapstructure:"collection"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

// LoadWaitOptions reads wait settings from a YAML config file.
func LoadWaitOptions(configFile string, opts *WaitOptions) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if err := v.Unmarshal(opts, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return errors.Wrap(err, "failed to load wait config")
	}

	return nil
}
