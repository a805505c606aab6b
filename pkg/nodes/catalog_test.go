package nodes

import (
	"sort"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CoversEveryNodeType(t *testing.T) {
	defs := Catalog()
	assert.Len(t, defs, len(catalog))

	for _, nodeType := range []models.NodeType{
		models.NodeTypeStart, models.NodeTypeEnd, models.NodeTypeCondition,
		models.NodeTypeDelay, models.NodeTypeSplit, models.NodeTypeMerge,
		models.NodeTypeSendMessage, models.NodeTypeSendEmail,
		models.NodeTypeAssignOperator, models.NodeTypeAssignDepartment,
		models.NodeTypeAddTag, models.NodeTypeRemoveTag,
		models.NodeTypeSetPriority, models.NodeTypeSetVariable,
		models.NodeTypeCloseConversation, models.NodeTypeTransferConversation,
		models.NodeTypeAIClassify, models.NodeTypeAIRespond,
		models.NodeTypeAISummarize, models.NodeTypeAISentiment,
		models.NodeTypeHTTPRequest, models.NodeTypeWebhook,
		models.NodeTypeUpdateCustomer, models.NodeTypeCreateNote,
	} {
		_, ok := DefinitionFor(nodeType)
		assert.True(t, ok, "missing catalog entry for %s", nodeType)
	}
}

func TestCatalog_OrderIsStable(t *testing.T) {
	defs := Catalog()

	sorted := sort.SliceIsSorted(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}

		return defs[i].Type < defs[j].Type
	})
	assert.True(t, sorted, "catalog must be ordered by category then type")

	assert.Equal(t, defs, Catalog())
}

func TestOutputPorts(t *testing.T) {
	assert.Equal(t, []string{models.PortOut}, OutputPorts(models.NodeTypeStart))
	assert.Equal(t, []string{models.PortTrue, models.PortFalse}, OutputPorts(models.NodeTypeCondition))
	assert.Equal(t, []string{models.PortOut, models.PortError}, OutputPorts(models.NodeTypeSendMessage))
	assert.Empty(t, OutputPorts(models.NodeTypeEnd))
	assert.Nil(t, OutputPorts("hologram"))
}

func TestValidateConfig(t *testing.T) {
	t.Run("valid send_message", func(t *testing.T) {
		err := ValidateConfig(models.NodeTypeSendMessage, map[string]any{"message": "hi"})
		require.NoError(t, err)
	})

	t.Run("missing required key", func(t *testing.T) {
		err := ValidateConfig(models.NodeTypeSendMessage, map[string]any{})
		assert.ErrorContains(t, err, "message")
	})

	t.Run("wrong type", func(t *testing.T) {
		err := ValidateConfig(models.NodeTypeDelay, map[string]any{"duration": "soon"})
		assert.Error(t, err)
	})

	t.Run("unknown node type", func(t *testing.T) {
		err := ValidateConfig("hologram", nil)
		assert.ErrorContains(t, err, "unknown node type")
	})

	t.Run("nil config against schema without required keys", func(t *testing.T) {
		err := ValidateConfig(models.NodeTypeStart, nil)
		require.NoError(t, err)
	})
}
