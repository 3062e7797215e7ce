// Package etcd adapts an etcd v3 client to the kv.Store contract. The
// conditional primitives map onto single etcd transactions; the counter is a
// compare-and-swap on the key's mod revision.
package etcd

import (
	"context"
	"strconv"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/jacentio/arbor/kv"
)

// Store wraps an etcd client. The caller owns the client's lifecycle.
type Store struct {
	cli *clientv3.Client
}

// New returns a Store backed by cli.
func New(cli *clientv3.Client) *Store {
	return &Store{cli: cli}
}

var _ kv.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := s.cli.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if res.Count == 0 {
		return "", false, nil
	}
	return string(res.Kvs[0].Value), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.cli.Put(ctx, key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.cli.Delete(ctx, key)
	return err
}

// Incr reads the current value and swaps in the successor, guarded by the mod
// revision observed at read time. A lost race re-reads and tries again; the
// loop ends as soon as ctx does.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		res, err := s.cli.Get(ctx, key)
		if err != nil {
			return 0, err
		}

		var cur int64
		cmp := clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
		if res.Count > 0 {
			cur, err = strconv.ParseInt(string(res.Kvs[0].Value), 10, 64)
			if err != nil {
				return 0, err
			}
			cmp = clientv3.Compare(clientv3.ModRevision(key), "=", res.Kvs[0].ModRevision)
		}
		next := cur + 1

		txn, err := s.cli.Txn(ctx).
			If(cmp).
			Then(clientv3.OpPut(key, strconv.FormatInt(next, 10))).
			Commit()
		if err != nil {
			return 0, err
		}
		if txn.Succeeded {
			return next, nil
		}
	}
}

func (s *Store) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	res, err := s.cli.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, value)).
		Commit()
	if err != nil {
		return false, err
	}
	return res.Succeeded, nil
}

func (s *Store) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	res, err := s.cli.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(key), "=", value)).
		Then(clientv3.OpDelete(key)).
		Commit()
	if err != nil {
		return false, err
	}
	return res.Succeeded, nil
}
