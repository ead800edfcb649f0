package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "plastic-detect/internal/application"
	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/infrastructure/vision"
	"plastic-detect/internal/logger"
)

const (
	msgStart = `👋 Привет! Я считаю пластик на фотографиях.

📸 Отправьте фото, затем команду /detect.

📋 Команды:
/detect — запустить детекцию
/status — текущее состояние
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото (или изображение файлом)
2️⃣ Отправьте /detect
3️⃣ Получите картинку с разметкой и количество найденного пластика

Новое фото заменяет предыдущее. Пока идёт детекция, повторный /detect игнорируется.`

	msgFileSelected   = "📎 Изображение выбрано. Отправьте /detect для запуска детекции."
	msgSendPhoto      = "📸 Пожалуйста, отправьте фото для детекции."
	msgNotAnImage     = "🖼 Этот файл не похож на изображение."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing     = "⏳ Обрабатываю изображение..."
	msgNoFile         = "📸 Сначала отправьте фото."
	msgInFlight       = "⏳ Детекция уже выполняется, дождитесь результата."
	msgDownloadError  = "⚠️ Не удалось скачать изображение. Попробуйте ещё раз."
	msgInternalError  = "⚠️ Что-то пошло не так. Попробуйте ещё раз."
)

// Bot представляет Telegram-бота поверх UploadController
type Bot struct {
	api        *tgbotapi.BotAPI
	uploads    *app.UploadController
	previewer  *vision.Previewer
	logger     *logger.Logger
	httpClient *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, uploads *app.UploadController, previewer *vision.Previewer, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("Authorized on account %s", api.Self.UserName)

	return newBot(api, uploads, previewer, log, &http.Client{}), nil
}

func newBot(api *tgbotapi.BotAPI, uploads *app.UploadController, previewer *vision.Previewer, log *logger.Logger, httpClient *http.Client) *Bot {
	return &Bot{
		api:        api,
		uploads:    uploads,
		previewer:  previewer,
		logger:     log,
		httpClient: httpClient,
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		// Берём файл с максимальным разрешением
		photo := msg.Photo[len(msg.Photo)-1]
		b.selectImage(ctx, msg.Chat.ID, photo.FileID, "photo.jpg", "image/jpeg")
		return
	}

	if msg.Document != nil {
		if !isImage(msg.Document.MimeType) {
			b.sendMessage(msg.Chat.ID, msgNotAnImage)
			return
		}
		b.selectImage(ctx, msg.Chat.ID, msg.Document.FileID, msg.Document.FileName, msg.Document.MimeType)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "status":
		snap, err := b.uploads.Snapshot(ctx, sessionKey(chatID))
		if err != nil {
			b.logger.Error("Error loading session: %v", err)
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, statusText(snap))

	case "detect":
		b.detect(ctx, chatID)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// selectImage скачивает файл и делает его выбранным для сессии чата
func (b *Bot) selectImage(ctx context.Context, chatID int64, fileID, name, contentType string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Warning("Error downloading file: %v", err)
		b.sendMessage(chatID, msgDownloadError)
		return
	}

	file := &entity.SelectedFile{Name: name, ContentType: contentType, Data: data}
	if _, err := b.uploads.SelectFile(ctx, sessionKey(chatID), file); err != nil {
		b.logger.Error("Error selecting file: %v", err)
		b.sendMessage(chatID, msgInternalError)
		return
	}

	b.sendMessage(chatID, msgFileSelected)
}

// detect запускает детекцию и отправляет результат, когда запрос завершится
func (b *Bot) detect(ctx context.Context, chatID int64) {
	done, err := b.uploads.Submit(ctx, sessionKey(chatID))
	switch {
	case errors.Is(err, entity.ErrNoFileSelected):
		b.sendMessage(chatID, msgNoFile)
		return
	case errors.Is(err, entity.ErrRequestInFlight):
		b.sendMessage(chatID, msgInFlight)
		return
	case err != nil:
		b.logger.Error("Error submitting: %v", err)
		b.sendMessage(chatID, msgInternalError)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	go func() {
		snap, ok := <-done
		if !ok {
			return
		}
		b.deliver(chatID, snap)
	}()
}

// deliver отправляет итог запроса в чат
func (b *Bot) deliver(chatID int64, snap entity.Snapshot) {
	if msg, failed := snap.Failure(); failed {
		b.sendMessage(chatID, "⚠️ "+msg)
		return
	}

	result, ok := snap.Result()
	if !ok {
		return
	}

	caption := resultCaption(result)
	image, err := result.AnnotatedJPEG()
	if err != nil {
		b.logger.Warning("Annotated image is unusable: %v", err)
		b.sendMessage(chatID, caption)
		return
	}

	preview, err := b.previewer.Inspect(image)
	if err != nil || !preview.SendableAsPhoto() {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "annotated.jpg", Bytes: image})
		doc.Caption = caption
		if _, err := b.api.Send(doc); err != nil {
			b.logger.Error("Error sending document: %v", err)
		}
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "annotated.jpg", Bytes: image})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("Error sending photo: %v", err)
		b.sendMessage(chatID, caption)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Error sending message: %v", err)
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func resultCaption(result entity.DetectionResult) string {
	return fmt.Sprintf("🥤 Plastic Count: %d", result.PlasticCount)
}

// statusText описывает снимок сессии для команды /status
func statusText(snap entity.Snapshot) string {
	var sb strings.Builder

	if snap.File != nil {
		fmt.Fprintf(&sb, "📎 Выбрано: %s (%d байт)\n", snap.File.Name, snap.File.Size)
	} else {
		sb.WriteString("📎 Изображение не выбрано\n")
	}

	switch st := snap.State.(type) {
	case entity.Loading:
		sb.WriteString("⏳ Детекция выполняется")
	case entity.Succeeded:
		sb.WriteString("✅ Готово. " + resultCaption(st.Result))
	case entity.Failed:
		sb.WriteString("⚠️ Ошибка: " + st.Message)
	default:
		sb.WriteString("💤 Детекция не запускалась")
	}

	return sb.String()
}
