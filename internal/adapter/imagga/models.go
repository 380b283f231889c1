package imagga

import (
	"fmt"

	"github.com/GoArmGo/Weplash/internal/domain"
)

// Поля ответа сделаны указателями, чтобы отличать отсутствующее поле от нулевого значения.

type tagsResponse struct {
	Result *struct {
		Tags *[]tagEntry `json:"tags"`
	} `json:"result"`
}

type tagEntry struct {
	Confidence *float64 `json:"confidence"`
	Tag        *struct {
		En *string `json:"en"`
	} `json:"tag"`
}

// toDomain проверяет ответ целиком и только потом возвращает теги
func (r tagsResponse) toDomain() ([]domain.ImageTag, error) {
	if r.Result == nil || r.Result.Tags == nil {
		return nil, fmt.Errorf("%w: result.tags", domain.ErrMalformedResponse)
	}
	tags := make([]domain.ImageTag, 0, len(*r.Result.Tags))
	for i, t := range *r.Result.Tags {
		if t.Confidence == nil || t.Tag == nil || t.Tag.En == nil {
			return nil, fmt.Errorf("%w: result.tags[%d]", domain.ErrMalformedResponse, i)
		}
		tags = append(tags, domain.ImageTag{Name: *t.Tag.En, Confidence: *t.Confidence})
	}
	return tags, nil
}

type colorsResponse struct {
	Result *struct {
		Colors *struct {
			BackgroundColors []struct {
				HTMLCode *string `json:"html_code"`
			} `json:"background_colors"`
		} `json:"colors"`
	} `json:"result"`
}

func (r colorsResponse) backgroundColor() (string, error) {
	if r.Result == nil || r.Result.Colors == nil || len(r.Result.Colors.BackgroundColors) == 0 {
		return "", fmt.Errorf("%w: result.colors.background_colors", domain.ErrMalformedResponse)
	}
	code := r.Result.Colors.BackgroundColors[0].HTMLCode
	if code == nil || *code == "" {
		return "", fmt.Errorf("%w: background_colors[0].html_code", domain.ErrMalformedResponse)
	}
	return *code, nil
}
