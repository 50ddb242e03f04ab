package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableDescriptor_Families(t *testing.T) {
	d := NewTableDescriptor("orders", "o", "m", "o")
	require.Equal(t, []string{"o", "m"}, d.Families)
	require.True(t, d.HasFamily("m"))

	c := d.Clone()
	require.Equal(t, 1, c.AddFamilies("m", "audit"))
	require.Equal(t, []string{"o", "m"}, d.Families)
	require.Equal(t, []string{"o", "m", "audit"}, c.Families)

	require.True(t, c.RemoveFamily("o"))
	require.False(t, c.RemoveFamily("o"))
	require.Equal(t, []string{"m", "audit"}, c.Families)
	require.Equal(t, []string{"o", "m"}, d.Families)
}

func TestTableNames(t *testing.T) {
	ns, tbl := SplitTableName("orders")
	require.Equal(t, "default", ns)
	require.Equal(t, "orders", tbl)

	ns, tbl = SplitTableName("app:users")
	require.Equal(t, "app", ns)
	require.Equal(t, "users", tbl)

	require.Equal(t, "orders", JoinTableName("default", "orders"))
	require.Equal(t, "app:users", JoinTableName("app", "users"))
}

func TestBytes(t *testing.T) {
	b := Bytes("row")
	c := b.Clone()
	c[0] = 'R'
	require.Equal(t, "row", b.String())
	require.False(t, b.Equal(c))
	require.Nil(t, Bytes(nil).Clone())
	require.Equal(t, "f:q", Cell{Family: Bytes("f"), Qualifier: Bytes("q")}.Column())
}
