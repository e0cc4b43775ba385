package catalog

import (
	"github.com/crono/flox/internal/models"
)

// mergeDetails combines caller-supplied fields with provider-fetched ones.
// Every field takes the existing value when present, else the fetched one:
// caller data always wins, enrichment only fills gaps.
func mergeDetails(existing, fetched models.ItemDetails) models.ItemDetails {
	merged := existing
	if merged.Title == nil {
		merged.Title = fetched.Title
	}
	if merged.OriginalTitle == nil {
		merged.OriginalTitle = fetched.OriginalTitle
	}
	if merged.ImdbID == nil {
		merged.ImdbID = fetched.ImdbID
	}
	if merged.TrailerKey == nil {
		merged.TrailerKey = fetched.TrailerKey
	}
	if merged.Overview == nil {
		merged.Overview = fetched.Overview
	}
	if merged.Homepage == nil {
		merged.Homepage = fetched.Homepage
	}
	if merged.PosterPath == nil {
		merged.PosterPath = fetched.PosterPath
	}
	if merged.BackdropPath == nil {
		merged.BackdropPath = fetched.BackdropPath
	}
	if merged.ReleaseDate == nil {
		merged.ReleaseDate = fetched.ReleaseDate
	}
	if merged.TmdbRating == nil {
		merged.TmdbRating = fetched.TmdbRating
	}
	if merged.ImdbRating == nil {
		merged.ImdbRating = fetched.ImdbRating
	}
	if len(merged.GenreIDs) == 0 {
		merged.GenreIDs = fetched.GenreIDs
	}
	return merged
}

// detailsFromDocument flattens a provider details document into the
// optional-field form used by the merge policy.
func detailsFromDocument(doc *models.Details) models.ItemDetails {
	return models.ItemDetails{
		Title:         strPtr(doc.ResolvedTitle()),
		OriginalTitle: strPtr(doc.ResolvedOriginalTitle()),
		ImdbID:        strPtr(doc.ResolvedImdbID()),
		TrailerKey:    trailerKey(doc.Videos.Results),
		Overview:      strPtr(doc.Overview),
		Homepage:      strPtr(doc.Homepage),
		PosterPath:    strPtr(doc.PosterPath),
		BackdropPath:  strPtr(doc.BackdropPath),
		ReleaseDate:   parseAirDate(doc.ResolvedReleaseDate()),
		TmdbRating:    floatPtr(doc.VoteAverage),
		GenreIDs:      doc.GenreIDs(),
	}
}

// detailsFromItem lifts an item's current enrichable fields into the
// optional-field form, so imports run through the same merge as create.
func detailsFromItem(item *models.Item) models.ItemDetails {
	return models.ItemDetails{
		Title:         strPtr(item.Title),
		OriginalTitle: item.OriginalTitle,
		ImdbID:        item.ImdbID,
		TrailerKey:    item.TrailerKey,
		Overview:      item.Overview,
		Homepage:      item.Homepage,
		PosterPath:    item.PosterPath,
		BackdropPath:  item.BackdropPath,
		ReleaseDate:   item.ReleaseDate,
		TmdbRating:    item.TmdbRating,
		ImdbRating:    item.ImdbRating,
	}
}

// applyDetails writes the merged fields onto an item. The slug is derived
// from the title on every title-changing write.
func applyDetails(item *models.Item, details models.ItemDetails) {
	if details.Title != nil {
		item.Title = *details.Title
		item.Slug = Slugify(*details.Title)
	}
	item.OriginalTitle = details.OriginalTitle
	item.ImdbID = details.ImdbID
	item.TrailerKey = details.TrailerKey
	item.Overview = details.Overview
	item.Homepage = details.Homepage
	item.PosterPath = details.PosterPath
	item.BackdropPath = details.BackdropPath
	item.ReleaseDate = details.ReleaseDate
	item.TmdbRating = details.TmdbRating
	item.ImdbRating = details.ImdbRating
}
