package nodes

import (
	"context"
	"errors"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

const aiContextTopK = 3

// AIClassifyHandler classifies the latest inbound message text into one of
// the configured categories. Missing categories or message text make it a
// no-op rather than an error: classification graphs often run on events that
// carry no message.
type AIClassifyHandler struct {
	deps Deps
}

func (h *AIClassifyHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	categories := configStringSlice(config, "categories")
	if len(categories) == 0 {
		return models.PortOut, nil
	}

	messageText := triggerMessageText(ectx)
	if messageText == "" {
		return models.PortOut, nil
	}

	result, err := h.deps.AI.Classify(ctx, messageText, categories)
	if err != nil {
		return "", err
	}

	outputVar := configString(config, "output_variable", "classification")
	ectx.Variables[outputVar] = result

	return models.PortOut, nil
}

// AIRespondHandler generates a reply suggestion, optionally grounded on
// knowledge-base context, and stores it in ai_response. With auto_send it
// re-enters the send-message path.
type AIRespondHandler struct {
	deps        Deps
	sendMessage *SendMessageHandler
}

func (h *AIRespondHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	if ectx.ConversationID == "" {
		return "", errors.New("no conversation bound to execution")
	}

	messageText := triggerMessageText(ectx)
	if messageText == "" {
		return "", errors.New("no message text to respond to")
	}

	var kbContext string

	if configBool(config, "use_knowledge_base", true) {
		retrieved, err := h.deps.AI.RetrieveContext(ctx, ectx.TenantID, messageText, aiContextTopK)
		if err != nil {
			return "", err
		}

		kbContext = retrieved
	}

	response, err := h.deps.AI.GenerateSuggestion(ctx, messageText, kbContext)
	if err != nil {
		return "", err
	}

	if response == "" {
		return models.PortOut, nil
	}

	ectx.Variables["ai_response"] = response

	if configBool(config, "auto_send", false) {
		return h.sendMessage.send(ctx, response, ectx)
	}

	return models.PortOut, nil
}

func triggerMessageText(ectx *models.ExecutionContext) string {
	text, _ := models.Lookup(ectx.Variables, "trigger.message_text")

	s, _ := text.(string)

	return s
}
