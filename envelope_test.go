package stdresp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/stdresp"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	paged := stdresp.ContractOf(stdresp.StandardResponse{Paginated: true})

	tests := map[string]struct {
		data     any
		contract stdresp.Contract
		want     string
	}{
		"object": {
			data: map[string]int{"n": 1},
			want: `{"success":true,"data":{"n":1}}`,
		},
		"array": {
			data: [2]int{1, 2},
			want: `{"success":true,"isArray":true,"data":[1,2]}`,
		},
		"nil slice": {
			data: []string(nil),
			want: `{"success":true,"isArray":true,"data":[]}`,
		},
		"scalar": {
			data: "hello",
			want: `{"success":true,"data":"hello"}`,
		},
		"paginated with empty params": {
			data:     []int{1},
			contract: paged,
			want:     `{"success":true,"isArray":true,"isPaginated":true,"pagination":{"limit":0,"offset":0},"data":[1]}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := json.Marshal(stdresp.Wrap(tc.data, nil, tc.contract))
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}

func TestWrap_uses_params(t *testing.T) {
	t.Parallel()

	p := stdresp.ParamsFrom(context.Background())
	p.SetCount(7)
	p.SetMessage("partial")

	c := stdresp.ContractOf(stdresp.StandardResponse{Paginated: true, Sorted: true})
	env := stdresp.Wrap([]int{1}, p, c)

	assert.Equal(t, "partial", env.Message)
	assert.True(t, env.IsSorted)
	assert.False(t, env.IsFiltered)
	assert.Nil(t, env.Filtering)
	if assert.NotNil(t, env.Pagination) && assert.NotNil(t, env.Pagination.Count) {
		assert.Equal(t, 7, *env.Pagination.Count)
	}
}

func TestIsSequence(t *testing.T) {
	t.Parallel()

	assert.True(t, stdresp.IsSequence([]int{}))
	assert.True(t, stdresp.IsSequence([3]string{}))
	assert.False(t, stdresp.IsSequence(nil))
	assert.False(t, stdresp.IsSequence(map[string]int{}))
	assert.False(t, stdresp.IsSequence("abc"))
}
