package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSON_Registered(t *testing.T) {
	c := encoding.GetCodec(Name)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestJSON_UnmarshalEmpty(t *testing.T) {
	var v struct{ ID string }
	require.NoError(t, JSON{}.Unmarshal(nil, &v))
	assert.Empty(t, v.ID)

	require.NoError(t, JSON{}.Unmarshal([]byte(`{"ID":"a1"}`), &v))
	assert.Equal(t, "a1", v.ID)
}
