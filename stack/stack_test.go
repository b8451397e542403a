package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/stack"
)

func TestPushPopDepth(t *testing.T) {
	s := stack.New[int]("data", 4)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	assert.Equal(t, 2, s.Depth())

	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, s.Depth())
}

func TestOverflow(t *testing.T) {
	s := stack.New[int]("data", 2)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	err := s.Push(3)
	var oerr stack.OverflowError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, stack.Kind("data"), oerr.Kind)
	assert.Equal(t, 2, s.Depth(), "overflow push must not mutate stack")
}

func TestUnderflow(t *testing.T) {
	s := stack.New[int]("data", 4)
	_, err := s.Pop()
	var uerr stack.UnderflowError
	require.ErrorAs(t, err, &uerr)

	require.NoError(t, s.Push(1))
	_, err = s.Peek(1)
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 1, s.Depth(), "failed peek must not mutate stack")
}

func TestSwapRot(t *testing.T) {
	s := stack.New[int]("data", 8)
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, s.Push(v))
	}
	require.NoError(t, s.Rot())
	assert.Equal(t, []int{2, 3, 1}, s.All())

	require.NoError(t, s.Swap())
	assert.Equal(t, []int{2, 1, 3}, s.All())
}

func TestPickRoll(t *testing.T) {
	s := stack.New[int]("data", 8)
	for _, v := range []int{10, 20, 30} {
		require.NoError(t, s.Push(v))
	}
	require.NoError(t, s.Pick(2))
	assert.Equal(t, []int{10, 20, 30, 10}, s.All())

	s.Reset()
	for _, v := range []int{10, 20, 30} {
		require.NoError(t, s.Push(v))
	}
	require.NoError(t, s.Roll(2))
	assert.Equal(t, []int{20, 30, 10}, s.All())
}

func TestDropReset(t *testing.T) {
	s := stack.New[int]("data", 8)
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, s.Push(v))
	}
	require.NoError(t, s.Drop(2))
	assert.Equal(t, []int{1}, s.All())

	s.Reset()
	assert.Equal(t, 0, s.Depth())
}

func TestTop(t *testing.T) {
	s := stack.New[int]("data", 8)
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, s.Push(v))
	}
	assert.Equal(t, []int{2, 3}, s.Top(2))
	assert.Equal(t, []int{1, 2, 3}, s.Top(99))
}
