package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stubdex/stubdex/apiclient"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/api/handler"
	"github.com/stubdex/stubdex/internal/server/hub"
	handlerTest "github.com/stubdex/stubdex/internal/testing"
)

func TestTypeSupertypes(t *testing.T) {
	tests := []struct {
		name             string
		typeName         string
		expectedResponse string
	}{
		{
			name:             "multiple inheritance in declaration order",
			typeName:         "ArrayModifier",
			expectedResponse: `{"type":"ArrayModifier","supertypes":["Modifier","bpy_struct"]}`,
		},
		{
			name:             "transitive chain",
			typeName:         "ObjectModifiers",
			expectedResponse: `{"type":"ObjectModifiers","supertypes":["bpy_prop_collection"]}`,
		},
		{
			name:             "root type has none",
			typeName:         "Vector",
			expectedResponse: `{"type":"Vector","supertypes":[]}`,
		},
		{
			name:             "unknown type",
			typeName:         "NoSuchType",
			expectedResponse: `{"status":404,"title":"Not Found","detail":"type \"NoSuchType\": not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, _, done := handlerTest.StartAPIServer(t, func(r *api.Router, svc *hub.Service, apiSrv *api.Server) {
				r.Register("type/{name}/supertypes", handler.TypeSupertypes(svc))
			})
			defer done()

			c := apiclient.NewTransport(addr)
			line, err := c.Do("type/{name}/supertypes", nil, map[string]string{"name": tt.typeName})
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedResponse, line)
		})
	}
}
