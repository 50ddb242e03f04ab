package hdao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type order struct {
	Status  string  `hdao:"o,status"`
	Total   int64   `hdao:"o,total"`
	Paid    bool    `hdao:"o,paid"`
	Weight  float64 `hdao:"m,weight"`
	Items   uint32  `hdao:"m,items"`
	Raw     []byte  `hdao:"m,raw"`
	Ignored string
}

func TestColumnStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	cs, _ := newTestColumnStore(t)
	require.NoError(t, cs.CreateTable(ctx, "orders", "o", "m"))

	in := order{Status: "NEW", Total: -42, Paid: true, Weight: 1.5, Items: 3, Raw: []byte{0, 1}, Ignored: "x"}
	require.NoError(t, cs.Save(ctx, "orders", Bytes("order-1"), &in))

	var out order
	found, err := cs.Load(ctx, "orders", Bytes("order-1"), &out)
	require.NoError(t, err)
	require.True(t, found)
	in.Ignored = ""
	require.Equal(t, in, out)

	cells := collect(t, cs.GetRow(ctx, "orders", Bytes("order-1")))
	require.Len(t, cells, 6)
}

func TestColumnStore_LoadAbsentRow(t *testing.T) {
	ctx := context.Background()
	cs, _ := newTestColumnStore(t)
	require.NoError(t, cs.CreateTable(ctx, "orders", "o", "m"))

	var out order
	found, err := cs.Load(ctx, "orders", Bytes("missing"), &out)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, order{}, out)
}

func TestColumnStore_LoadNeedsPointer(t *testing.T) {
	cs, _ := newTestColumnStore(t)
	_, err := cs.Load(context.Background(), "orders", Bytes("r"), order{})
	require.Error(t, err)
}

func TestRegisterModel_BadTag(t *testing.T) {
	type bad struct {
		Name string `hdao:"onlyfamily"`
	}
	cs, _ := newTestColumnStore(t)
	err := cs.Save(context.Background(), "t", Bytes("r"), bad{Name: "x"})
	require.ErrorContains(t, err, "needs family and qualifier")
}
