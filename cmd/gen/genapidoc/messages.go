package genapidoc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/handlermsg"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/httptyped"
)

// MessageSend
// POST /api/v1/messages
func MessageSend(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, path map[string]*openapi3.PathItem) {
	const scopedSchemaName = "MessageSend"
	const pathRoute = "/api/v1/messages"

	example := exampleMessage()
	reqStruct := handlermsg.SendMessageReq{
		Content: example.Content,
		Embeds:  example.Embeds,
	}

	reqSchemaName := addSchemas(ctx, cfg, components, scopedSchemaName+".", reqStruct)
	reqBody := openapi3.NewRequestBody().WithJSONSchemaRef(schemaRef(reqSchemaName))

	// multipart: payload is the same JSON as above, files is repeated
	formSchema := openapi3.NewObjectSchema().
		WithProperty(handlermsg.FormPayload, openapi3.NewStringSchema()).
		WithProperty(handlermsg.FormFiles, openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithFormat("binary")))
	reqBody.Content["multipart/form-data"] = openapi3.NewMediaType().WithSchema(formSchema)

	components.RequestBodies[scopedSchemaName] = &openapi3.RequestBodyRef{
		Value: reqBody,
	}

	respStruct := handlermsg.SendMessageResp{
		Message: example,
		Report: httptyped.ReportEntity{
			Provider:    "discord",
			StatusCode:  http.StatusNoContent,
			ElapsedTime: 230,
		},
		RemainingQuotaPercent: 99,
		Persisted:             true,
	}

	op := openapi3.NewOperation()
	op.Tags = []string{"Message"}
	op.Summary = "Send Message"
	op.Description = "Send one message to the configured webhook. " +
		"Only one message is delivered at a time and the next one must wait 2 seconds after the last success."
	op.OperationID = scopedSchemaName
	op.RequestBody = &openapi3.RequestBodyRef{
		Ref: fmt.Sprintf("#/components/requestBodies/%s", scopedSchemaName),
	}

	addSuccess(ctx, cfg, components, op, scopedSchemaName, http.StatusOK, respStruct, "message delivered and recorded")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusBadRequest, respbuilder.ErrValidation, "message content or embed is required")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusPreconditionFailed, respbuilder.ErrPrecondition, "webhook is not configured")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusConflict, respbuilder.ErrConflict, "another message is still being sent")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusTooManyRequests, respbuilder.ErrRateLimited, "please wait before sending again")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusBadGateway, respbuilder.ErrUpstream, "Discord rejected the message")
	pathItem(path, pathRoute).Post = op
}

// MessageClearHistory
// DELETE /api/v1/messages
func MessageClearHistory(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, path map[string]*openapi3.PathItem) {
	const scopedSchemaName = "MessageClearHistory"
	const pathRoute = "/api/v1/messages"

	op := openapi3.NewOperation()
	op.Tags = []string{"Message"}
	op.Summary = "Clear History"
	op.Description = "Remove every sent message from history. Webhook configuration is kept."
	op.OperationID = scopedSchemaName

	addSuccess(ctx, cfg, components, op, scopedSchemaName, http.StatusOK, handlermsg.ClearHistoryResp{Persisted: true}, "history cleared")
	pathItem(path, pathRoute).Delete = op
}
