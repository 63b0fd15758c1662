package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/pkg/types"
)

func TestRuleBasedTriage(t *testing.T) {
	tests := []struct {
		name       string
		note       string
		intent     types.Intent
		priority   types.Priority
		action     types.NextAction
		confidence float64
		tags       types.Tags
	}{
		{
			name:       "urgent purchase inquiry",
			note:       "Need urgent pricing for 50 seats ASAP! Want to buy next week.",
			intent:     types.IntentBuy,
			priority:   types.PriorityP0,
			action:     types.ActionCall,
			confidence: 0.7,
			tags:       types.Tags{"urgent"},
		},
		{
			name:       "russian purchase without urgency",
			note:       "Какая цена на вашу систему?",
			intent:     types.IntentBuy,
			priority:   types.PriorityP1,
			action:     types.ActionEmail,
			confidence: 0.5,
			tags:       types.Tags{},
		},
		{
			name:       "urgent support issue",
			note:       "Сломался экспорт, ошибка 500, срочно!",
			intent:     types.IntentSupport,
			priority:   types.PriorityP0,
			action:     types.ActionCall,
			confidence: 0.7,
			tags:       types.Tags{"urgent"},
		},
		{
			name:       "support before job on shared stem",
			note:       "Принтер не работает после обновления",
			intent:     types.IntentSupport,
			priority:   types.PriorityP2,
			action:     types.ActionEmail,
			confidence: 0.5,
			tags:       types.Tags{},
		},
		{
			name:       "job application",
			note:       "Есть вакансия инженера? Интересует карьера у вас",
			intent:     types.IntentJob,
			priority:   types.PriorityP3,
			action:     types.ActionIgnore,
			confidence: 0.7,
			tags:       types.Tags{},
		},
		{
			name:       "spam with link",
			note:       "Check out https://deals.example.com for реклама",
			intent:     types.IntentSpam,
			priority:   types.PriorityP3,
			action:     types.ActionIgnore,
			confidence: 0.9,
			tags:       types.Tags{},
		},
		{
			name:       "buy outranks spam when both match",
			note:       "Хочу купить, подробности на www.shop.example",
			intent:     types.IntentBuy,
			priority:   types.PriorityP1,
			action:     types.ActionEmail,
			confidence: 0.5,
			tags:       types.Tags{},
		},
		{
			name:       "no vocabulary match",
			note:       "Просто решил написать вам",
			intent:     types.IntentOther,
			priority:   types.PriorityP2,
			action:     types.ActionQualify,
			confidence: 0.3,
			tags:       types.Tags{},
		},
		{
			name:       "deferred unmatched note is ignored",
			note:       "Загляну как-нибудь потом",
			intent:     types.IntentOther,
			priority:   types.PriorityP3,
			action:     types.ActionIgnore,
			confidence: 0.3,
			tags:       types.Tags{},
		},
		{
			name:       "deferred purchase is qualified",
			note:       "Куплю когда-нибудь потом, пришлите прайс",
			intent:     types.IntentBuy,
			priority:   types.PriorityP3,
			action:     types.ActionQualify,
			confidence: 0.5,
			tags:       types.Tags{},
		},
		{
			name:       "enterprise trial request",
			note:       "Нужен пробный период для бизнес клиента, soon",
			intent:     types.IntentOther,
			priority:   types.PriorityP1,
			action:     types.ActionQualify,
			confidence: 0.3,
			tags:       types.Tags{"enterprise", "trial"},
		},
		{
			name:       "uppercase note",
			note:       "URGENT: WHAT IS THE PRICE?",
			intent:     types.IntentBuy,
			priority:   types.PriorityP0,
			action:     types.ActionCall,
			confidence: 0.5,
			tags:       types.Tags{"urgent"},
		},
		{
			name:       "substring match inside larger word",
			note:       "Interested in your pricing tiers",
			intent:     types.IntentBuy,
			priority:   types.PriorityP1,
			action:     types.ActionEmail,
			confidence: 0.5,
			tags:       types.Tags{},
		},
		{
			name:       "confidence capped",
			note:       "price cost buy цена стоимость",
			intent:     types.IntentBuy,
			priority:   types.PriorityP1,
			action:     types.ActionEmail,
			confidence: 0.9,
			tags:       types.Tags{},
		},
		{
			name:       "empty note",
			note:       "",
			intent:     types.IntentOther,
			priority:   types.PriorityP2,
			action:     types.ActionQualify,
			confidence: 0.3,
			tags:       types.Tags{},
		},
	}

	rb := NewRuleBased(DefaultRules())
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rb.Triage(ctx, tt.note)
			require.NoError(t, err)

			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.priority, got.Priority)
			assert.Equal(t, tt.action, got.NextAction)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.tags, got.Tags)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestRuleBasedDeterministic(t *testing.T) {
	rb := NewRuleBased(DefaultRules())
	ctx := context.Background()
	note := "Need urgent pricing for 50 seats ASAP! Want to buy next week."

	first, err := rb.Triage(ctx, note)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		got, err := rb.Triage(ctx, note)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}
