package filter

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1  = models.Tag{ID: uuid.MustParse("9a4c1f0e-6c1b-4d43-9a5e-2b7b9c1d0e11"), Name: "VIP"}
	t2  = models.Tag{ID: uuid.MustParse("2f1d7e7c-93a8-4a35-8c0e-6d4f5b2a7c22"), Name: "Promo"}
	ana = models.Client{ID: uuid.New(), Name: "Ana", Phone: "(11) 98765-4321", Level: models.LevelLead, Tags: []models.Tag{}}
	bia = models.Client{ID: uuid.New(), Name: "Beatriz", Phone: "11912345678", Level: models.LevelCustomer, Tags: []models.Tag{t1}}
)

func ids(clients []models.Client) []uuid.UUID {
	out := make([]uuid.UUID, len(clients))
	for i, c := range clients {
		out[i] = c.ID
	}
	return out
}

func TestNameContainsIgnoresCase(t *testing.T) {
	list := []models.Client{ana, bia}

	got := ClientCriteria{Name: "an"}.Apply(list)

	assert.Equal(t, []uuid.UUID{ana.ID}, ids(got))
	assert.Equal(t, []uuid.UUID{bia.ID}, ids(ClientCriteria{Name: "BEA"}.Apply(list)))
}

func TestNameContainsFoldsAccents(t *testing.T) {
	erica := models.Client{ID: uuid.New(), Name: "ÉRICA Souza", Tags: []models.Tag{}}

	got := ClientCriteria{Name: "érica"}.Apply([]models.Client{ana, erica})

	assert.Equal(t, []uuid.UUID{erica.ID}, ids(got))
}

func TestTagFilter(t *testing.T) {
	list := []models.Client{ana, bia}

	assert.Equal(t, []uuid.UUID{ana.ID}, ids(ClientCriteria{Tag: NoTags}.Apply(list)))
	assert.Equal(t, []uuid.UUID{bia.ID}, ids(ClientCriteria{Tag: t1.ID.String()}.Apply(list)))
	assert.Empty(t, ClientCriteria{Tag: t2.ID.String()}.Apply(list))
}

func TestLevelEquals(t *testing.T) {
	list := []models.Client{ana, bia}

	assert.Equal(t, []uuid.UUID{ana.ID}, ids(ClientCriteria{Level: models.LevelLead}.Apply(list)))
	assert.Equal(t, []uuid.UUID{bia.ID}, ids(ClientCriteria{Level: models.LevelCustomer}.Apply(list)))
}

func TestCriteriaAreConjunctive(t *testing.T) {
	caio := models.Client{ID: uuid.New(), Name: "Caio", Level: models.LevelCustomer, Tags: []models.Tag{t1, t2}}
	list := []models.Client{ana, bia, caio}

	got := ClientCriteria{Tag: t1.ID.String(), Name: "c"}.Apply(list)

	assert.Equal(t, []uuid.UUID{caio.ID}, ids(got))
}

func TestApplyPreservesOrder(t *testing.T) {
	list := []models.Client{bia, ana, bia}

	got := ClientCriteria{Name: "a"}.Apply(list)

	assert.Equal(t, []uuid.UUID{bia.ID, ana.ID, bia.ID}, ids(got))
}

func TestApplyIsIdempotent(t *testing.T) {
	list := []models.Client{ana, bia}
	criteria := []ClientCriteria{
		{Name: "a"},
		{Tag: NoTags},
		{Tag: t1.ID.String(), Level: models.LevelCustomer},
		{Name: "zzz"},
	}

	for _, c := range criteria {
		once := c.Apply(list)
		assert.Equal(t, once, c.Apply(once), "%+v", c)
	}
}

func TestClearedIsIdentity(t *testing.T) {
	list := []models.Client{ana, bia}
	c := ClientCriteria{Name: "x", Tag: NoTags, Level: models.LevelLead}

	cleared := c.Cleared()

	assert.True(t, cleared.IsEmpty())
	assert.Equal(t, list, cleared.Apply(list))
}

func TestApplyReturnsFreshSlice(t *testing.T) {
	list := []models.Client{ana, bia}

	got := Apply(list)
	got[0] = bia

	assert.Equal(t, ana.ID, list[0].ID)
	assert.NotNil(t, Apply[models.Client](nil))
}

func TestCountMatchesApply(t *testing.T) {
	list := []models.Client{ana, bia}
	preds := ClientCriteria{Name: "a"}.Predicates()

	assert.Equal(t, len(Apply(list, preds...)), Count(list, preds...))
}

func TestPhoneContainsIsLiteral(t *testing.T) {
	msgs := []models.MarketingMessage{
		{ID: uuid.New(), Phone: "(11) 98765-4321", Tags: []models.Tag{}},
		{ID: uuid.New(), Phone: "11987654321", Tags: []models.Tag{}},
	}

	got := MarketingCriteria{Phone: "98765-"}.Apply(msgs)

	require.Len(t, got, 1)
	assert.Equal(t, msgs[0].ID, got[0].ID)
}

func TestMessagePresence(t *testing.T) {
	text, blank := "promo", "   "
	msgs := []models.MarketingMessage{
		{ID: uuid.New(), Message: &text},
		{ID: uuid.New(), Message: &blank},
		{ID: uuid.New()},
	}

	with := MarketingCriteria{Message: WithMessage}.Apply(msgs)
	without := MarketingCriteria{Message: WithoutMessage}.Apply(msgs)

	require.Len(t, with, 1)
	assert.Equal(t, msgs[0].ID, with[0].ID)
	assert.Len(t, without, 2)
}

func TestMarketingNameAndFirstName(t *testing.T) {
	client := bia
	msgs := []models.MarketingMessage{
		{ID: uuid.New(), FirstName: "Beatriz", Client: &client, Tags: client.Tags},
		{ID: uuid.New(), FirstName: "Ghost", Tags: []models.Tag{}},
	}

	assert.Len(t, MarketingCriteria{Name: "beat"}.Apply(msgs), 1)
	assert.Len(t, MarketingCriteria{FirstName: "gho"}.Apply(msgs), 1)
	assert.Len(t, MarketingCriteria{Tag: t1.ID.String()}.Apply(msgs), 1)
	assert.Len(t, MarketingCriteria{Tag: NoTags}.Apply(msgs), 1)
	assert.Equal(t, msgs, MarketingCriteria{Name: "x"}.Cleared().Apply(msgs))
}

func TestParseClientCriteria(t *testing.T) {
	c, err := ParseClientCriteria(url.Values{
		"name":  {"An"},
		"tag":   {"9A4C1F0E-6C1B-4D43-9A5E-2B7B9C1D0E11"},
		"level": {"Lead"},
	})

	require.NoError(t, err)
	assert.Equal(t, ClientCriteria{Name: "An", Tag: t1.ID.String(), Level: models.LevelLead}, c)
}

func TestParseClientCriteriaRejectsBadValues(t *testing.T) {
	_, err := ParseClientCriteria(url.Values{"tag": {"vip"}, "level": {"Prospect"}})

	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "tag")
	assert.Contains(t, details, "level")
}

func TestParseMarketingCriteria(t *testing.T) {
	c, err := ParseMarketingCriteria(url.Values{
		"first_name": {"ana"},
		"phone":      {"119"},
		"tag":        {NoTags},
		"message":    {"without-message"},
	})

	require.NoError(t, err)
	assert.Equal(t, MarketingCriteria{FirstName: "ana", Phone: "119", Tag: NoTags, Message: WithoutMessage}, c)

	_, err = ParseMarketingCriteria(url.Values{"message": {"maybe"}})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}
