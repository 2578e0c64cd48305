package handlers

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/database"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// sitemapLastMod is the date the page layout last changed
const sitemapLastMod = "2025-07-12"

// subjectSections are the per-syllabus pages of a subject
var subjectSections = []string{"communityNotes", "resources", "pastpapers"}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap handles GET /sitemap.xml
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.ListSubjectCatalog(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build sitemap")
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs:  buildSitemap(strings.TrimRight(h.siteURL, "/"), subjects),
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode sitemap")
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

// buildSitemap lists the static pages, one page per subject name and the
// section pages of every subject/syllabus pair, without duplicates
func buildSitemap(base string, subjects []database.SubjectListing) []sitemapURL {
	seen := make(map[string]bool)
	var urls []sitemapURL

	add := func(path, freq, priority string) {
		loc := base + path
		if seen[loc] {
			return
		}
		seen[loc] = true
		urls = append(urls, sitemapURL{Loc: loc, LastMod: sitemapLastMod, ChangeFreq: freq, Priority: priority})
	}

	add("/", "monthly", "1")
	add("/resources", "monthly", "1")
	add("/contributor", "monthly", "0.9")

	for _, s := range subjects {
		slug := url.PathEscape(strings.ToLower(s.Name))
		add("/subjects/"+slug, "monthly", "0.9")

		if s.SyllabusType != database.SyllabusIAL && s.SyllabusType != database.SyllabusIGCSE {
			continue
		}
		for _, section := range subjectSections {
			add("/subjects/"+slug+"/"+s.SyllabusType+"/"+section, "weekly", "0.8")
		}
	}

	return urls
}
