package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-leisure-bot/app/observability/metrics"
	"github.com/FACorreiaa/go-leisure-bot/internal/callback"
	"github.com/FACorreiaa/go-leisure-bot/internal/session"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

const (
	ackFavoriteAdded   = "Добавлено в избранное!"
	ackAlreadyFavorite = "Уже в избранном"
	ackStale           = "Данные устарели, выполните новый поиск"
	ackBadOption       = "Ошибка: неверный вариант"
	ackNotFound        = "Место не найдено"
	ackNoCity          = "Город не указан"
	ackNoCoordinates   = "Координаты места не найдены"
	ackUpstream        = "Сервис недоступен, попробуйте позже"
	ackPersistence     = "Не удалось сохранить данные, попробуйте ещё раз"
	ackBadPayload      = "Некорректные данные"
)

// Handler routes inbound chat events to the session manager and renders
// the manager's answers back through the transport.
type Handler struct {
	logger  *slog.Logger
	client  *Client
	manager *session.Manager
	metrics *metrics.AppMetrics
}

func NewHandler(client *Client, manager *session.Manager, logger *slog.Logger) *Handler {
	metrics.InitAppMetrics()
	return &Handler{
		logger:  logger,
		client:  client,
		manager: manager,
		metrics: metrics.Get(),
	}
}

// Run polls for updates until ctx is cancelled. Poll failures back off and
// retry; a panicking handler is contained so one poisoned update cannot
// take the loop down.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("Bot update loop started")
	var offset int64
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Bot update loop stopped")
			return ctx.Err()
		default:
		}

		updates, err := h.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.logger.Error("getUpdates failed, retrying", slog.Any("error", err))
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Update handler panicked", slog.Any("panic", r))
			h.metrics.HandlerErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("category", "panic")))
		}
	}()

	h.metrics.UpdatesProcessedTotal.Add(ctx, 1)
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	switch msg.Text {
	case "/start", "/help":
		h.sendWelcome(ctx, chatID)
	case "/history", buttonHistory:
		h.sendHistory(ctx, chatID)
	case "/favorites", buttonFavorites:
		h.sendFavorites(ctx, chatID)
	case buttonActivities:
		h.manager.StartActivities(ctx, chatID)
		h.send(ctx, chatID, promptActivityCity, nil)
	case buttonPlaces:
		h.manager.StartPlaces(ctx, chatID)
		h.send(ctx, chatID, promptPlacesCity, nil)
	default:
		h.handleText(ctx, msg)
	}
}

// handleText routes a plain message by the session's current step. Text
// arriving outside a city question is ignored.
func (h *Handler) handleText(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	switch h.manager.Snapshot(ctx, chatID).Step {
	case session.StepAwaitingCity:
		prompt, err := h.manager.SetCity(ctx, chatID, msg.Text)
		if err != nil {
			h.countError(ctx, err)
			h.send(ctx, chatID, weatherErrorText(msg.Text), nil)
			h.send(ctx, chatID, promptActivityCity, nil)
			return
		}
		h.send(ctx, chatID, weatherText(prompt), moodKeyboard())
	case session.StepAwaitingPlaces:
		h.manager.SetPlacesCity(ctx, chatID, msg.Text)
		h.send(ctx, chatID, promptCategory, categoriesKeyboard())
	default:
		h.logger.DebugContext(ctx, "Ignoring text outside a city prompt",
			slog.Int64("chat_id", chatID))
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil {
		h.answer(ctx, cb.ID, ackStale)
		return
	}
	chatID := cb.Message.Chat.ID

	ref, err := callback.Decode(cb.Data)
	if err != nil {
		h.countError(ctx, err)
		h.answer(ctx, cb.ID, ackBadPayload)
		return
	}

	switch ref.Kind {
	case callback.KindMood:
		if err := h.manager.SetMood(ctx, chatID, ref.Value); err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.edit(ctx, cb, chosenText(cb.Message.Text, moodIcons[types.Mood(ref.Value)], ref.Value), nil, false)
		h.send(ctx, chatID, "💰 Выберите ваш бюджет:", budgetKeyboard())

	case callback.KindBudget:
		if err := h.manager.SetBudget(ctx, chatID, ref.Value); err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.edit(ctx, cb, chosenText(cb.Message.Text, budgetIcons[types.Budget(ref.Value)], ref.Value), nil, false)
		h.send(ctx, chatID, "👥 Сколько человек будет участвовать?", peopleKeyboard())

	case callback.KindPeople:
		rec, err := h.manager.SetPeople(ctx, chatID, ref.Value, callerName(cb))
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.edit(ctx, cb, chosenText(cb.Message.Text, partyIcons[types.Party(ref.Value)], ref.Value), nil, false)
		h.send(ctx, chatID, recommendationText(rec), recommendationKeyboard(rec))

	case callback.KindCategory:
		h.answer(ctx, cb.ID, "Ищем "+string(ref.Category)+"...")
		results, err := h.manager.SearchVenues(ctx, chatID, ref.Category)
		if err != nil {
			h.countError(ctx, err)
			h.edit(ctx, cb, "Ошибка при поиске: "+ackUpstream, nil, false)
			return
		}
		if len(results.Places) == 0 {
			h.edit(ctx, cb, noPlacesText(results), nil, false)
			return
		}
		h.edit(ctx, cb, placesListText(results), placesKeyboard(results), false)

	case callback.KindPlace:
		detail, err := h.manager.VenueDetails(ctx, chatID, ref.QueryID, ref.VenueType, ref.VenueID)
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.edit(ctx, cb, venueDetailText(detail), venueDetailKeyboard(detail), true)

	case callback.KindFavPlace:
		added, detail, err := h.manager.FavoriteVenue(ctx, chatID, ref.QueryID, ref.VenueType, ref.VenueID)
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		if !added {
			h.answer(ctx, cb.ID, ackAlreadyFavorite)
			return
		}
		h.answer(ctx, cb.ID, ackFavoriteAdded)
		h.edit(ctx, cb, venueDetailText(detail), venueDetailKeyboard(detail), true)

	case callback.KindMap:
		lat, lon, err := h.manager.MapCoordinates(ctx, chatID, ref.VenueType, ref.VenueID)
		if err != nil {
			h.countError(ctx, err)
			h.answer(ctx, cb.ID, ackNoCoordinates)
			return
		}
		if err := h.client.AnswerCallbackQuery(ctx, cb.ID, "Открываю карту...", mapURL(lat, lon)); err != nil {
			h.logger.WarnContext(ctx, "Failed to answer with map URL", slog.Any("error", err))
		}

	case callback.KindBackCategories:
		h.edit(ctx, cb, promptCategory, categoriesKeyboard(), false)

	case callback.KindBackPlaces:
		results, err := h.manager.BackToPlaces(ctx, chatID, ref.QueryID)
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.edit(ctx, cb, placesListText(results), placesKeyboard(results), false)

	case callback.KindFavActivity:
		added, _, err := h.manager.FavoriteActivity(ctx, chatID, ref.QueryID, ref.Option)
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		if added {
			h.answer(ctx, cb.ID, ackFavoriteAdded)
		} else {
			h.answer(ctx, cb.ID, ackAlreadyFavorite)
		}

	case callback.KindVenues:
		city, err := h.manager.ShowVenuesForActivities(ctx, chatID, ref.QueryID)
		if err != nil {
			h.reject(ctx, cb.ID, err)
			return
		}
		h.send(ctx, chatID, "Выберите категорию заведений в "+city+":", categoriesKeyboard())

	case callback.KindRestart:
		h.manager.Cancel(ctx, chatID)
		h.sendWelcome(ctx, chatID)

	case callback.KindHistory:
		h.sendHistory(ctx, chatID)

	case callback.KindCancel:
		h.manager.Cancel(ctx, chatID)
		h.edit(ctx, cb, "Действие отменено.", nil, false)
		h.send(ctx, chatID, "Выберите действие:", mainKeyboard())

	case callback.KindBack:
		h.manager.StartActivities(ctx, chatID)
		h.edit(ctx, cb, promptActivityCity, nil, false)
	}
}

func (h *Handler) sendWelcome(ctx context.Context, chatID int64) {
	h.send(ctx, chatID, welcomeText(), mainKeyboard())
}

func (h *Handler) sendHistory(ctx context.Context, chatID int64) {
	entries, err := h.manager.History(ctx, chatID)
	if err != nil {
		h.countError(ctx, err)
		h.send(ctx, chatID, ackPersistence, nil)
		return
	}
	if len(entries) == 0 {
		h.send(ctx, chatID, "У вас пока нет истории запросов.", nil)
		return
	}
	h.send(ctx, chatID, historyText(entries), nil)
}

func (h *Handler) sendFavorites(ctx context.Context, chatID int64) {
	record, err := h.manager.Favorites(ctx, chatID)
	if err != nil {
		h.countError(ctx, err)
		h.send(ctx, chatID, ackPersistence, nil)
		return
	}
	if record.Empty() {
		h.send(ctx, chatID, "У вас пока нет избранного.", nil)
		return
	}
	if err := h.client.SendHTML(ctx, chatID, favoritesText(record), nil); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send favorites", slog.Any("error", err))
	}
}

// reject acknowledges a callback that the manager refused, picking the
// user-facing text from the error category.
func (h *Handler) reject(ctx context.Context, callbackID string, err error) {
	h.countError(ctx, err)
	h.answer(ctx, callbackID, ackText(err))
}

func ackText(err error) string {
	switch {
	case errors.Is(err, types.ErrStaleQuery):
		return ackStale
	case errors.Is(err, types.ErrOutOfRange):
		return ackBadOption
	case errors.Is(err, types.ErrNotFound):
		return ackNotFound
	case errors.Is(err, types.ErrNoSession):
		return ackNoCity
	case types.IsUpstreamError(err):
		return ackUpstream
	case types.IsPersistenceError(err):
		return ackPersistence
	default:
		return ackBadPayload
	}
}

func (h *Handler) countError(ctx context.Context, err error) {
	category := "input"
	switch {
	case types.IsUpstreamError(err):
		category = "upstream"
	case types.IsPersistenceError(err):
		category = "persistence"
	}
	h.metrics.HandlerErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, markup any) {
	if err := h.client.SendMessage(ctx, chatID, text, markup); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send message", slog.Any("error", err))
	}
}

func (h *Handler) edit(ctx context.Context, cb *CallbackQuery, text string, markup *InlineKeyboardMarkup, html bool) {
	err := h.client.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text, markup, html)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to edit message", slog.Any("error", err))
	}
}

func (h *Handler) answer(ctx context.Context, callbackID, text string) {
	if err := h.client.AnswerCallbackQuery(ctx, callbackID, text, ""); err != nil {
		h.logger.WarnContext(ctx, "Failed to answer callback", slog.Any("error", err))
	}
}

func callerName(cb *CallbackQuery) string {
	if cb.From.Username != "" {
		return cb.From.Username
	}
	return cb.From.FirstName
}
