package ask

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/metrics"
	"context"
	"encoding/base64"
	"iter"
	"strings"

	"go.uber.org/zap"
)

// FileSource источник содержимого файлов по id.
type FileSource interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// errorMarker признак JSON-ошибки вместо картинки в теле ответа.
const errorMarker = `"error"`

// Translator превращает сообщения thread в ответ клиенту.
type Translator struct {
	files   FileSource
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func NewTranslator(files FileSource, m *metrics.Metrics, logger *zap.SugaredLogger) *Translator {
	return &Translator{files: files, metrics: m, logger: logger}
}

// contentItems обходит элементы содержимого всех сообщений в порядке выдачи сервиса.
func contentItems(messages []ai.Message) iter.Seq[ai.Content] {
	return func(yield func(ai.Content) bool) {
		for _, m := range messages {
			for _, c := range m.Content {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Translate возвращает первый пригодный элемент (text или image). Остальные элементы
// не рассматриваются, поэтому в результате не больше одного элемента.
func (t *Translator) Translate(ctx context.Context, messages []ai.Message) []ResponseItem {
	items := make([]ResponseItem, 0, 1)
	for c := range contentItems(messages) {
		if item, ok := t.accept(ctx, c); ok {
			items = append(items, item)
			break
		}
	}
	return items
}

func (t *Translator) accept(ctx context.Context, c ai.Content) (ResponseItem, bool) {
	switch c.Type {
	case ai.ContentText:
		t.logger.Infow("Message", "text", c.Text)
		return ResponseItem{Type: ItemText, Content: c.Text}, true
	case ai.ContentImageFile:
		encoded, ok := t.fetchImage(ctx, c.FileID)
		if !ok {
			return ResponseItem{}, false
		}
		return ResponseItem{Type: ItemImage, Content: encoded}, true
	default:
		return ResponseItem{}, false
	}
}

// fetchImage скачивает картинку и кодирует в base64. Ошибка загрузки или тело
// с "error" внутри означают, что элемент пропускается.
func (t *Translator) fetchImage(ctx context.Context, fileID string) (string, bool) {
	data, err := t.files.Fetch(ctx, fileID)
	if err != nil {
		t.metrics.ImageFailures.WithLabelValues("fetch").Inc()
		t.logger.Errorw("Error retrieving image file", "fileID", fileID, "error", err)
		return "", false
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.metrics.ImageFailures.WithLabelValues("decode").Inc()
		t.logger.Errorw("Error retrieving image file", "fileID", fileID, "error", err)
		return "", false
	}
	if strings.Contains(string(decoded), errorMarker) {
		t.metrics.ImageFailures.WithLabelValues("error_payload").Inc()
		t.logger.Errorw("Error retrieving image file", "fileID", fileID, "body", string(decoded))
		return "", false
	}
	return encoded, true
}
