// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package binstruct_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/binstruct"
)

type devDescriptor struct {
	Type binstruct.U32le `bin:"off=0,siz=4"`
	Dest binstruct.U32le `bin:"off=4,siz=4"`
	Size binstruct.U32le `bin:"off=8,siz=4"`
	End  binstruct.End   `bin:"off=12"`
}

func TestStructRoundTrip(t *testing.T) {
	t.Parallel()
	orig := devDescriptor{Type: 1, Dest: 8, Size: 0x1000}
	dat, err := binstruct.Marshal(orig)
	require.NoError(t, err)
	require.Len(t, dat, 12)

	var got devDescriptor
	n, err := binstruct.Unmarshal(dat, &got)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, orig, got)
}

func TestStructArray(t *testing.T) {
	t.Parallel()
	var arr [2]devDescriptor
	arr[0] = devDescriptor{Type: 1, Dest: 0, Size: 4}
	arr[1] = devDescriptor{Type: 2, Dest: 1, Size: 8}

	dat, err := binstruct.Marshal(arr)
	require.NoError(t, err)
	require.Len(t, dat, 24)

	var got [2]devDescriptor
	n, err := binstruct.Unmarshal(dat, &got)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, arr, got)
}

func TestStaticSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 12, binstruct.StaticSize(devDescriptor{}))
}
