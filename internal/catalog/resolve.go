package catalog

import (
	"context"

	"github.com/crono/flox/internal/models"
	"github.com/crono/flox/internal/scanner"
)

// FileResolution maps a local media file onto catalog data: the matched
// item, plus the exact episode when the filename carried an episode marker.
type FileResolution struct {
	Parsed  scanner.ParsedFile `json:"parsed"`
	Item    *models.Item       `json:"item,omitempty"`
	Episode *models.Episode    `json:"episode,omitempty"`
}

// ResolveFile parses a media filename and finds the catalog entry behind
// it. An inline provider id tag wins outright; otherwise the parsed title
// is tried as a slug first and as a loose title second. Filenames with an
// episode marker constrain the lookup to TV and also resolve the episode.
func (s *Service) ResolveFile(ctx context.Context, filename string) (*FileResolution, error) {
	parsed := scanner.ParseFilename(filename)
	res := &FileResolution{Parsed: parsed}

	var mediaType models.MediaType
	if parsed.IsTV() {
		mediaType = models.MediaTypeTV
	}

	var item *models.Item
	var err error
	if parsed.TmdbID != 0 {
		item, err = s.items.GetByTmdbID(ctx, parsed.TmdbID)
	} else {
		item, err = s.items.GetBySlug(ctx, Slugify(parsed.Title), mediaType)
		if err == nil && item == nil {
			item, err = s.findByTitleLoose(ctx, parsed.Title, mediaType)
		}
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return res, nil
	}
	res.Item = item

	if parsed.IsTV() && item.MediaType == models.MediaTypeTV {
		eps, err := s.episodes.FindBy(ctx, models.FindByTmdbID, "", item.TmdbID, parsed.Season, parsed.Episode)
		if err != nil {
			return nil, err
		}
		if len(eps) == 1 {
			res.Episode = eps[0]
		}
	}
	return res, nil
}
