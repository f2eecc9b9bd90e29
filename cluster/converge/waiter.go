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

package converge

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/meridiandb/meridian/cluster"
	"github.com/meridiandb/meridian/cluster/model"
	"github.com/meridiandb/meridian/common/metric"
)

const DefaultPollInterval = 1 * time.Second

var (
	pollCounter = metric.NewCounter("meridian_convergence_polls",
		"Number of cluster state poll iterations", metric.Dimensionless, nil)
	timeoutCounter = metric.NewCounter("meridian_convergence_timeouts",
		"Number of waits that gave up at the deadline", metric.Dimensionless, nil)
)

// Waiter blocks callers until a condition over the cluster-state snapshot
// holds, polling a fresh snapshot at a fixed interval.
//
// A true result is a point-in-time observation: the cluster may change again
// right after the wait returns. Timing out is reported as a plain false,
// while a context cancellation delivered during a wait always surfaces as an
// error, never as a false result.
type Waiter struct {
	reader       cluster.StateReader
	pollInterval time.Duration
	log          *slog.Logger
}

func NewWaiter(reader cluster.StateReader) *Waiter {
	return NewWaiterWithPollInterval(reader, DefaultPollInterval)
}

func NewWaiterWithPollInterval(reader cluster.StateReader, pollInterval time.Duration) *Waiter {
	return &Waiter{
		reader:       reader,
		pollInterval: pollInterval,
		log:          slog.With(slog.String("component", "convergence-waiter")),
	}
}

// WaitForAllActiveAndLive waits until every replica of every active shard in
// scope is hosted on a live node and reports the active state. An empty
// collection name widens the scope to all collections. Returns false if the
// timeout elapses first.
func (w *Waiter) WaitForAllActiveAndLive(ctx context.Context, collection string, timeout time.Duration) (bool, error) {
	return w.waitForState(ctx, timeout, func(state *model.ClusterState) bool {
		return allReplicasSatisfy(state, collection, func(replica model.Replica) bool {
			return state.IsNodeLive(replica.NodeID) && replica.State == model.ReplicaStateActive
		})
	})
}

// WaitForAllNotLive waits until every replica of every active shard in scope
// is hosted on a node that is not live. The replica state field is ignored.
func (w *Waiter) WaitForAllNotLive(ctx context.Context, collection string, timeout time.Duration) (bool, error) {
	return w.waitForState(ctx, timeout, func(state *model.ClusterState) bool {
		return allReplicasSatisfy(state, collection, func(replica model.Replica) bool {
			return !state.IsNodeLive(replica.NodeID)
		})
	})
}

// WaitToSeeReplicaLive waits until the named collection contains, in one of
// its active shards, a replica with the given id and base url hosted on a
// live node. The scan stops at the first match.
func (w *Waiter) WaitToSeeReplicaLive(ctx context.Context, collection, replicaID, baseURL string, timeout time.Duration) (bool, error) {
	found, err := w.waitForState(ctx, timeout, func(state *model.ClusterState) bool {
		w.log.Debug(
			"Waiting to see replica live",
			slog.String("collection", collection),
			slog.String("replica", replicaID),
			slog.String("base-url", baseURL),
		)
		return replicaSeenLive(state, collection, replicaID, baseURL)
	})
	if err != nil {
		return false, err
	}

	if !found {
		w.log.Error(
			"Timed out waiting to see replica live in cluster state",
			slog.String("collection", collection),
			slog.String("replica", replicaID),
			slog.String("base-url", baseURL),
		)
	}
	return found, nil
}

// IsAutoAddReplicas looks up the auto-add-replicas flag of the named
// collection on the current snapshot. No polling: an absent snapshot or an
// unknown collection is reported as false.
func (w *Waiter) IsAutoAddReplicas(collection string) bool {
	state := w.reader.ClusterState()
	if state == nil {
		return false
	}
	c, ok := state.GetCollection(collection)
	if !ok {
		return false
	}
	return c.AutoAddReplicas
}

// waitForState is the shared poll loop. The deadline is fixed at call time
// on the monotonic clock, so wall-clock jumps cannot shorten or extend the
// wait. The condition is re-evaluated over the entire scope on every
// iteration; an absent snapshot skips evaluation but still sleeps.
func (w *Waiter) waitForState(ctx context.Context, timeout time.Duration, condition func(*model.ClusterState) bool) (bool, error) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		pollCounter.Inc()

		if state := w.reader.ClusterState(); state != nil && condition(state) {
			return true, nil
		}

		if err := w.sleep(ctx); err != nil {
			return false, err
		}
	}

	timeoutCounter.Inc()
	return false, nil
}

func (w *Waiter) sleep(ctx context.Context) error {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "cluster state wait interrupted")
	}
}

func scopedCollections(state *model.ClusterState, collection string) []string {
	if collection != "" {
		return []string{collection}
	}
	return state.CollectionNames()
}

// allReplicasSatisfy reports whether every replica of every active shard in
// scope satisfies the predicate. Shards that are not active impose no
// requirement. A named collection missing from the snapshot fails the check,
// since it may still appear on a later poll.
func allReplicasSatisfy(state *model.ClusterState, collection string, satisfied func(model.Replica) bool) bool {
	for _, name := range scopedCollections(state, collection) {
		c, ok := state.GetCollection(name)
		if !ok {
			return false
		}

		for _, shard := range c.Shards {
			if shard.State != model.ShardStateActive {
				continue
			}

			for _, replica := range shard.Replicas {
				if !satisfied(replica) {
					return false
				}
			}
		}
	}

	return true
}

func replicaSeenLive(state *model.ClusterState, collection, replicaID, baseURL string) bool {
	c, ok := state.GetCollection(collection)
	if !ok {
		return false
	}

	for _, shard := range c.Shards {
		if shard.State != model.ShardStateActive {
			continue
		}

		for _, replica := range shard.Replicas {
			if replica.ID == replicaID && replica.BaseURL == baseURL && state.IsNodeLive(replica.NodeID) {
				return true
			}
		}
	}

	return false
}
