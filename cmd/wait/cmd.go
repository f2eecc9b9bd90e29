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

package wait

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/meridiandb/meridian/cluster"
	"github.com/meridiandb/meridian/cluster/converge"
	"github.com/meridiandb/meridian/cmd/common"
	"github.com/meridiandb/meridian/common/metric"
	"github.com/meridiandb/meridian/common/process"
)

var (
	metaOpts   = common.NewMetadataOptions()
	conf       = common.WaitOptions{Timeout: time.Minute, PollInterval: converge.DefaultPollInterval}
	configFile string

	metricsAddr string
	replicaID   string
	baseURL     string

	Cmd = &cobra.Command{
		Use:   "wait",
		Short: "Wait for cluster state convergence",
		Long: `Block until the shared cluster state reflects a desired
membership or liveness condition, or until the timeout elapses.`,
	}

	activeAndLiveCmd = &cobra.Command{
		Use:   "active-and-live",
		Short: "Wait until all replicas of active shards are live and active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWait(cmd, func(ctx context.Context, w *converge.Waiter) (bool, error) {
				return w.WaitForAllActiveAndLive(ctx, conf.Collection, conf.Timeout)
			})
		},
	}

	allNotLiveCmd = &cobra.Command{
		Use:   "all-not-live",
		Short: "Wait until no replica of any active shard is on a live node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWait(cmd, func(ctx context.Context, w *converge.Waiter) (bool, error) {
				return w.WaitForAllNotLive(ctx, conf.Collection, conf.Timeout)
			})
		},
	}

	replicaLiveCmd = &cobra.Command{
		Use:     "replica-live",
		Short:   "Wait until a specific replica is observed on a live node",
		PreRunE: validateReplicaLive,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWait(cmd, func(ctx context.Context, w *converge.Waiter) (bool, error) {
				return w.WaitToSeeReplicaLive(ctx, conf.Collection, replicaID, baseURL, conf.Timeout)
			})
		},
	}
)

func init() {
	common.AddMetadataFlags(Cmd, &metaOpts)
	Cmd.PersistentFlags().StringVarP(&conf.Collection, "collection", "c", "", "Collection to scope the wait to (default: all collections)")
	Cmd.PersistentFlags().DurationVarP(&conf.Timeout, "timeout", "t", conf.Timeout, "How long to wait before giving up")
	Cmd.PersistentFlags().DurationVar(&conf.PollInterval, "poll-interval", conf.PollInterval, "Interval between cluster state polls")
	Cmd.PersistentFlags().StringVarP(&configFile, "conf", "f", "", "Wait settings config file")
	Cmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address for the duration of the wait")

	replicaLiveCmd.Flags().StringVar(&replicaID, "replica", "", "Replica id to wait for")
	replicaLiveCmd.Flags().StringVar(&baseURL, "base-url", "", "Base url the replica must advertise")

	Cmd.AddCommand(activeAndLiveCmd)
	Cmd.AddCommand(allNotLiveCmd)
	Cmd.AddCommand(replicaLiveCmd)
}

func validateReplicaLive(*cobra.Command, []string) error {
	if conf.Collection == "" {
		return errors.New("collection must be set for replica-live")
	}
	if replicaID == "" || baseURL == "" {
		return errors.New("replica and base-url must be set for replica-live")
	}
	return nil
}

// applyConfigFile merges settings from the config file, keeping any value
// that was set explicitly on the command line.
func applyConfigFile(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}

	fileConf := conf
	if err := common.LoadWaitOptions(configFile, &fileConf); err != nil {
		return err
	}

	if !cmd.Flags().Changed("collection") {
		conf.Collection = fileConf.Collection
	}
	if !cmd.Flags().Changed("timeout") {
		conf.Timeout = fileConf.Timeout
	}
	if !cmd.Flags().Changed("poll-interval") {
		conf.PollInterval = fileConf.PollInterval
	}
	return nil
}

func runWait(cmd *cobra.Command, do func(ctx context.Context, w *converge.Waiter) (bool, error)) error {
	if err := applyConfigFile(cmd); err != nil {
		return err
	}
	if err := metaOpts.Validate(); err != nil {
		return err
	}

	provider, err := metaOpts.NewProvider()
	if err != nil {
		return err
	}

	closers := []io.Closer{provider}
	defer func() {
		if err := process.CloseAll(closers...); err != nil {
			slog.Warn(
				"Failed to shut down cleanly",
				slog.Any("error", err),
			)
		}
	}()

	if metricsAddr != "" {
		metrics, err := metric.Start(metricsAddr)
		if err != nil {
			return err
		}
		closers = append(closers, metrics)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	waiter := converge.NewWaiterWithPollInterval(cluster.NewMetadataStateReader(provider), conf.PollInterval)

	converged, err := do(ctx, waiter)
	if err != nil {
		return err
	}
	if !converged {
		return errors.New("timed out waiting for cluster state convergence")
	}

	slog.Info("Cluster state converged")
	return nil
}
