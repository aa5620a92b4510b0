package livequery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLatest_KeepsOnlyNewest(t *testing.T) {
	l := NewLatest[int]()
	l.Push([]int{1}, nil)
	l.Push([]int{1, 2}, nil)
	l.Push([]int{1, 2, 3}, nil)

	got := <-l.C()
	require.Equal(t, []int{1, 2, 3}, got.Items)

	select {
	case v := <-l.C():
		t.Fatalf("unexpected stale result %v", v)
	default:
	}
}

func TestLatest_AsSubscriptionPush(t *testing.T) {
	src := &evenSource{items: []int{2}}
	reg := New[int]()
	l := NewLatest[int]()

	sub := reg.Subscribe(context.Background(), src, l.Push)
	defer sub.Cancel()

	require.Equal(t, []int{2}, (<-l.C()).Items)

	src.add(4)
	reg.Publish(4)
	require.Equal(t, []int{2, 4}, (<-l.C()).Items)
}

func TestLatest_DrainDropsPending(t *testing.T) {
	l := NewLatest[int]()
	l.Drain()
	l.Push([]int{1}, nil)
	l.Drain()

	select {
	case v := <-l.C():
		t.Fatalf("expected empty mailbox, got %v", v)
	default:
	}
}
