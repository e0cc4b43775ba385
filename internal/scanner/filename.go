package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ──────────────────── Parsed Result ────────────────────

// ParsedFile holds what a media filename reveals about the item behind it.
// Season/Episode of 0 means no episode marker was found, i.e. a movie.
type ParsedFile struct {
	Title      string
	Year       *int
	Season     int
	Episode    int
	TmdbID     int    // inline [tmdbid-12345] or {tmdb-12345}
	ImdbID     string // inline [imdbid-tt1234567] or {imdb-tt1234567}
	Resolution string // e.g. "1080p", "2160p"
	Source     string // e.g. "bluray", "web"
	Container  string // e.g. "mkv", "mp4"
}

// IsTV reports whether the filename carried an episode marker.
func (p ParsedFile) IsTV() bool {
	return p.Episode > 0
}

// ──────────────────── Compiled Patterns ────────────────────

// Inline provider ids, Jellyfin-style [tmdbid-X] and Plex-style {tmdb-X}.
var (
	inlineTmdbRx = regexp.MustCompile(`(?i)[\[{]tmdb(?:id)?[=-](\d+)[\]}]`)
	inlineImdbRx = regexp.MustCompile(`(?i)[\[{]imdb(?:id)?[=-](tt\d+)[\]}]`)
)

// Year in parentheses or brackets: (2020), [2020].
var yearInParensRx = regexp.MustCompile(`[\(\[]([12]\d{3})[\)\]]`)

// Episode markers, most specific first.
var (
	sxxExxRx  = regexp.MustCompile(`(?i)(?:^|[/\\._ -])S(\d{1,4})\s*E(\d{1,4})`)
	crossRx   = regexp.MustCompile(`(?i)(?:^|[/\\._ -])(\d{1,2})[xX](\d{1,3})`)
	verboseRx = regexp.MustCompile(`(?i)[Ss]eason\s*(\d{1,4})\s*[Ee]pisode\s*(\d{1,4})`)
)

var spacesRx = regexp.MustCompile(`\s+`)
var bracketedRx = regexp.MustCompile(`\{[^}]*\}|\[[^\]]*\]`)

// garbageTokens is the junk vocabulary of scene-release filenames. Tokens are
// matched case-insensitively after delimiter normalization.
var garbageTokens = buildTokenSet(
	// video codecs
	"x264", "x265", "h264", "h265", "hevc", "avc", "xvid", "divx", "av1", "vp9", "10bit", "8bit",
	// audio
	"aac", "ac3", "dts", "dts-hd", "truehd", "atmos", "flac", "mp3", "opus", "eac3", "dd5.1", "5.1", "7.1",
	// resolution
	"480p", "576p", "720p", "1080p", "1080i", "2160p", "4k", "uhd", "hd", "sd",
	// source
	"bluray", "blu-ray", "bdrip", "brrip", "bdremux", "hdrip",
	"dvd", "dvdrip", "dvdscr", "webrip", "web-dl", "webdl", "web",
	"hdtv", "pdtv", "tvrip", "cam", "screener", "telesync",
	// release tags
	"remux", "proper", "repack", "internal", "limited", "extended", "unrated",
	"theatrical", "remastered", "multi", "subbed", "dubbed", "subs",
	// containers showing up as tokens
	"mkv", "mp4", "avi",
)

var sourceTokens = map[string]string{
	"bluray": "bluray", "blu-ray": "bluray", "bdrip": "bluray", "brrip": "bluray",
	"bdremux": "bluray", "remux": "bluray", "hdrip": "bluray",
	"dvd": "dvd", "dvdrip": "dvd",
	"webrip": "web", "web-dl": "web", "webdl": "web", "web": "web",
	"hdtv": "hdtv", "pdtv": "hdtv",
	"cam": "cam", "dvdscr": "screener", "screener": "screener",
	"telesync": "telesync",
}

var resolutionTokens = buildTokenSet("480p", "576p", "720p", "1080p", "1080i", "2160p", "4k", "uhd")

// ──────────────────── Parser ────────────────────

// ParseFilename extracts title, year, episode numbers and inline provider
// ids from a media filename. Well-named files ("Title (Year)",
// "Show - S01E02") parse exactly; scene releases go through token-based
// garbage stripping.
func ParseFilename(filename string) ParsedFile {
	var result ParsedFile

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	result.Container = strings.ToLower(strings.TrimPrefix(ext, "."))

	// Inline provider ids come off first, before bracket stripping eats them.
	if m := inlineTmdbRx.FindStringSubmatch(base); len(m) >= 2 {
		result.TmdbID, _ = strconv.Atoi(m[1])
	}
	if m := inlineImdbRx.FindStringSubmatch(base); len(m) >= 2 {
		result.ImdbID = m[1]
	}
	base = inlineTmdbRx.ReplaceAllString(base, "")
	base = inlineImdbRx.ReplaceAllString(base, "")
	base = strings.TrimSpace(base)

	normalized := strings.ReplaceAll(base, "_", " ")

	if season, episode, pos := episodeMarker(normalized); episode > 0 {
		result.Season = season
		result.Episode = episode
		show := normalized
		if pos > 0 {
			show = normalized[:pos]
		}
		show = strings.ReplaceAll(show, ".", " ")
		show = strings.TrimRight(show, " -–._")
		result.Title, result.Year = splitYear(collapse(show))
		return result
	}

	cleanUniversal(base, &result)
	return result
}

// episodeMarker finds the first season/episode indicator and returns its
// byte offset, so everything before it can become the show title.
func episodeMarker(name string) (season, episode, pos int) {
	for _, rx := range []*regexp.Regexp{sxxExxRx, crossRx, verboseRx} {
		if m := rx.FindStringSubmatchIndex(name); m != nil {
			season, _ = strconv.Atoi(name[m[2]:m[3]])
			episode, _ = strconv.Atoi(name[m[4]:m[5]])
			return season, episode, m[0]
		}
	}
	return 0, 0, -1
}

// cleanUniversal handles movie-style names: year as breakpoint, then a
// garbage bitmap over the remaining tokens. Resolution and source are
// detected over the whole name since they usually sit after the year.
func cleanUniversal(base string, result *ParsedFile) {
	name := bracketedRx.ReplaceAllString(base, " ")

	for _, t := range tokenize(strings.NewReplacer(".", " ", "_", " ").Replace(name)) {
		tl := strings.ToLower(t)
		if result.Resolution == "" && resolutionTokens[tl] {
			result.Resolution = tl
		}
		if result.Source == "" {
			result.Source = sourceTokens[tl]
		}
	}

	parensYear := false
	if m := yearInParensRx.FindStringSubmatch(name); len(m) >= 2 {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y) {
			result.Year = &y
			parensYear = true
			if idx := strings.Index(name, m[0]); idx > 0 {
				name = name[:idx]
			}
		}
	}

	name = strings.ReplaceAll(name, ".", " ")
	name = strings.ReplaceAll(name, "_", " ")

	tokens := tokenize(name)
	if len(tokens) == 0 {
		result.Title = strings.TrimSpace(base)
		return
	}

	// Bare year token as breakpoint. Titles can contain years ("Blade
	// Runner 2049"), so the release year is the last one, and a year in
	// leading position is a title, not a year.
	if !parensYear {
		for i := len(tokens) - 1; i > 0; i-- {
			if y, err := strconv.Atoi(tokens[i]); err == nil && len(tokens[i]) == 4 && plausibleYear(y) {
				result.Year = &y
				tokens = tokens[:i]
				break
			}
		}
	}

	// Keep leading good tokens, stop after two consecutive garbage ones.
	// Very short names are kept whole: "2012" alone is a title, not junk.
	var kept []string
	bad := 0
	for _, t := range tokens {
		if len(tokens) > 2 && garbageTokens[strings.ToLower(t)] {
			bad++
			if bad >= 2 {
				break
			}
			continue
		}
		kept = append(kept, t)
		bad = 0
	}
	if len(kept) == 0 {
		kept = tokens[:1]
	}

	result.Title = collapse(strings.TrimRight(strings.Join(kept, " "), " -–"))
}

// splitYear strips a trailing "(2020)" from a show title.
func splitYear(title string) (string, *int) {
	if m := yearInParensRx.FindStringSubmatch(title); len(m) >= 2 {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y) {
			stripped := strings.TrimSpace(strings.Replace(title, m[0], "", 1))
			return stripped, &y
		}
	}
	return title, nil
}

func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2100
}

func tokenize(s string) []string {
	var tokens []string
	for _, p := range strings.Fields(s) {
		p = strings.Trim(p, "-–()[]{}+,;")
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func collapse(s string) string {
	return strings.TrimSpace(spacesRx.ReplaceAllString(s, " "))
}

func buildTokenSet(tokens ...string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = true
	}
	return set
}
