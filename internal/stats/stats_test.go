package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/menu"
)

type stubStore struct {
	counts *database.UsageCounts
	unread int
	err    error
}

func (s stubStore) GetUsageCounts(context.Context) (*database.UsageCounts, error) {
	return s.counts, s.err
}

func (s stubStore) CountUnreplied(context.Context) (int, error) {
	return s.unread, nil
}

func TestEmptyDatabaseReport(t *testing.T) {
	db, err := database.NewDB(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	catalog := menu.NewCatalog(config.Default())
	agg := NewAggregator(database.NewStore(db, nil), catalog)

	report, err := agg.Collect(context.Background())
	require.NoError(t, err)

	want := "Статистика использования бота:\n" +
		"Всего запусков: 0\n" +
		"Использовали бота сегодня: 0\n" +
		"Всего взаимодействий: 0\n" +
		"Взаимодействий сегодня: 0\n" +
		"\nЗапросы на социальные сети:\n" +
		"Telegram - Всего: 0, Сегодня: 0\n" +
		"Instagram - Всего: 0, Сегодня: 0\n" +
		"\nЗапросы на книги:\n" +
		"Хиджаб: Основные требования - Всего: 0, Сегодня: 0\n" +
		"Вабиль: Благодатный дождь - Всего: 0, Сегодня: 0\n" +
		"\nНеотвеченных сообщений: 0"
	assert.Equal(t, want, report.Format(config.Default().Messages.Stats))
}

func TestCollectMergesCatalogAndCounts(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog = config.CatalogConfig{
		Social: []config.CatalogEntry{{Name: "Telegram", URL: "https://t.me/x"}, {Name: "VK", URL: "https://vk.com/x"}},
	}
	store := stubStore{
		counts: &database.UsageCounts{
			TotalStarts:       7,
			TodayStarts:       2,
			TotalInteractions: 30,
			TodayInteractions: 4,
			SocialTotal:       map[string]int{"Telegram": 5, "Facebook": 1},
			SocialToday:       map[string]int{"Telegram": 2},
			PromoTotal:        map[string]int{},
			PromoToday:        map[string]int{},
		},
		unread: 3,
	}

	report, err := NewAggregator(store, menu.NewCatalog(cfg)).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []CategoryCount{
		{Name: "Telegram", Total: 5, Today: 2},
		{Name: "VK"},
		{Name: "Facebook", Total: 1},
	}, report.Social)
	assert.Empty(t, report.Promo)
	assert.Equal(t, 3, report.Unread)
	text := report.Format(cfg.Messages.Stats)
	assert.Contains(t, text, "Всего запусков: 7\n")
	assert.Contains(t, text, "Взаимодействий сегодня: 4\n")
}

func TestFormatUsesConfiguredLabels(t *testing.T) {
	labels := config.StatsMessages{
		Title:             "Usage:",
		TotalStarts:       "starts %d",
		TodayStarts:       "starts today %d",
		TotalInteractions: "taps %d",
		TodayInteractions: "taps today %d",
		SocialHeader:      "Social:",
		PromoHeader:       "Books:",
		CategoryLine:      "%s %d/%d",
		Unread:            "unread %d",
	}
	report := &Report{
		TotalStarts:       3,
		TodayStarts:       1,
		TotalInteractions: 9,
		TodayInteractions: 2,
		Social:            []CategoryCount{{Name: "Telegram", Total: 4, Today: 1}},
		Promo:             []CategoryCount{{Name: "Book"}},
		Unread:            5,
	}

	want := "Usage:\nstarts 3\nstarts today 1\ntaps 9\ntaps today 2\n" +
		"\nSocial:\nTelegram 4/1\n" +
		"\nBooks:\nBook 0/0\n" +
		"\nunread 5"
	assert.Equal(t, want, report.Format(labels))
}

func TestCollectStoreError(t *testing.T) {
	agg := NewAggregator(stubStore{err: errors.New("db down")}, menu.NewCatalog(config.Default()))

	_, err := agg.Collect(context.Background())
	assert.ErrorContains(t, err, "db down")
}
