package genapidoc

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
)

// addSchemas registers generated schema of value into components, and return the parent schema name.
func addSchemas(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, prefix string, value interface{}) string {
	out := MustNewSchemaGenerator(ctx, cfg, prefix, value)
	for s, ref := range out.Schemas {
		components.Schemas[s] = ref
	}

	return out.ParentSchemaName
}

func schemaRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Ref: fmt.Sprintf("#/components/schemas/%s", name),
	}
}

// addSuccess wraps data with respbuilder.Success, so documented body is the same as the real one.
func addSuccess(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, op *openapi3.Operation, scopedSchemaName string, status int, data interface{}, desc string) {
	resp := respbuilder.Success(ctx, data)
	name := addSchemas(ctx, cfg, components, fmt.Sprintf("%s.Resp%d.", scopedSchemaName, status), resp)
	op.AddResponse(status, openapi3.NewResponse().WithJSONSchemaRef(schemaRef(name)).WithDescription(desc))
}

func addError(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, op *openapi3.Operation, scopedSchemaName string, status int, kind respbuilder.ErrKind, desc string) {
	resp := respbuilder.Error(ctx, kind, fmt.Errorf("%s", desc))
	name := addSchemas(ctx, cfg, components, fmt.Sprintf("%s.Resp%d.", scopedSchemaName, status), resp)
	op.AddResponse(status, openapi3.NewResponse().WithJSONSchemaRef(schemaRef(name)).WithDescription(desc))
}

func pathItem(paths map[string]*openapi3.PathItem, pathRoute string) *openapi3.PathItem {
	_, exist := paths[pathRoute]
	if !exist {
		paths[pathRoute] = &openapi3.PathItem{}
	}

	return paths[pathRoute]
}
