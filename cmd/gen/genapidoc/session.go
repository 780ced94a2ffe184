package genapidoc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/handlersession"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/httptyped"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

const exampleWebhookURL = "https://discord.com/api/webhooks/123456789/token"

func exampleMessage() webhook.HistoryMessage {
	color := 0x5865F2
	return webhook.HistoryMessage{
		ID:       "428156241618747393",
		Content:  "Deploy finished",
		Username: webhook.DefaultUsername,
		Embeds: []webhook.Embed{
			{
				Title:       "Release 1.0.0",
				Description: "All checks passed",
				Color:       &color,
				Fields: []webhook.EmbedField{
					{Name: "Region", Value: "eu-west", Inline: true},
				},
			},
		},
		Timestamp:  time.Now().UTC(),
		WebhookURL: exampleWebhookURL,
		Attachments: []webhook.HistoryAttachment{
			{
				ID:          "0",
				Filename:    "report.pdf",
				Size:        1024,
				URL:         "mem://428156241618747393/report.pdf",
				ContentType: "application/pdf",
			},
		},
	}
}

// SessionGet
// GET /api/v1/session
func SessionGet(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, path map[string]*openapi3.PathItem) {
	const scopedSchemaName = "SessionGet"
	const pathRoute = "/api/v1/session"

	lastSentAt := time.Now().UTC()
	respStruct := handlersession.GetSessionResp{
		State: httptyped.StateEntity{
			Messages: []webhook.HistoryMessage{exampleMessage()},
			CurrentConfig: httptyped.ConfigEntity{
				URL:      exampleWebhookURL,
				Username: webhook.DefaultUsername,
			},
			IsSending:             false,
			LastSentAt:            &lastSentAt,
			RemainingQuotaPercent: 99,
			Phase:                 "cooldown",
			Connected:             true,
			CooldownRemainingMs:   1500,
		},
	}

	op := openapi3.NewOperation()
	op.Tags = []string{"Session"}
	op.Summary = "Get Session"
	op.Description = "Current webhook configuration, sent history (newest first), cooldown and quota."
	op.OperationID = scopedSchemaName

	addSuccess(ctx, cfg, components, op, scopedSchemaName, http.StatusOK, respStruct, "current session")
	pathItem(path, pathRoute).Get = op
}

// ConfigPut
// PUT /api/v1/config
func ConfigPut(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, path map[string]*openapi3.PathItem) {
	const scopedSchemaName = "ConfigPut"
	const pathRoute = "/api/v1/config"

	reqStruct := handlersession.PutConfigReq{
		URL:       exampleWebhookURL,
		Username:  "Deploy Bot",
		AvatarURL: "https://example.com/avatar.png",
	}

	reqSchemaName := addSchemas(ctx, cfg, components, scopedSchemaName+".", reqStruct)
	reqBody := openapi3.NewRequestBody().WithJSONSchemaRef(schemaRef(reqSchemaName))
	components.RequestBodies[scopedSchemaName] = &openapi3.RequestBodyRef{
		Value: reqBody,
	}

	respStruct := handlersession.PutConfigResp{
		Config: httptyped.ConfigEntity{
			URL:       reqStruct.URL,
			Username:  reqStruct.Username,
			AvatarURL: reqStruct.AvatarURL,
		},
		Connected: true,
		Persisted: true,
	}

	op := openapi3.NewOperation()
	op.Tags = []string{"Session"}
	op.Summary = "Replace Webhook Configuration"
	op.Description = "Empty url disconnects the webhook. Empty username is replaced with the default username."
	op.OperationID = scopedSchemaName
	op.RequestBody = &openapi3.RequestBodyRef{
		Ref: fmt.Sprintf("#/components/requestBodies/%s", scopedSchemaName),
	}

	addSuccess(ctx, cfg, components, op, scopedSchemaName, http.StatusOK, respStruct, "configuration saved")
	addError(ctx, cfg, components, op, scopedSchemaName, http.StatusBadRequest, respbuilder.ErrValidation, "invalid Discord webhook URL")
	pathItem(path, pathRoute).Put = op
}

// WebhookValidate
// GET /api/v1/webhooks/validate?url=
func WebhookValidate(ctx context.Context, cfg ApiDocCfg, components openapi3.Components, path map[string]*openapi3.PathItem) {
	const scopedSchemaName = "WebhookValidate"
	const pathRoute = "/api/v1/webhooks/validate"

	respStruct := handlersession.ValidateWebhookResp{
		URL:   exampleWebhookURL,
		Valid: true,
	}

	op := openapi3.NewOperation()
	op.Tags = []string{"Session"}
	op.Summary = "Validate Webhook URL"
	op.Description = "Only checks the URL shape, no request is made to Discord."
	op.OperationID = scopedSchemaName
	op.AddParameter(openapi3.NewQueryParameter("url").
		WithDescription("URL to check").
		WithSchema(openapi3.NewStringSchema()))

	addSuccess(ctx, cfg, components, op, scopedSchemaName, http.StatusOK, respStruct, "validation result")
	pathItem(path, pathRoute).Get = op
}
