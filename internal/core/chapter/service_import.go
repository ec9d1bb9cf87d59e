// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/detect"
	"github.com/taibuivan/novelvault/internal/merge"
	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/validate"
	"github.com/taibuivan/novelvault/pkg/slice"
	"github.com/taibuivan/novelvault/pkg/textutil"
	"github.com/taibuivan/novelvault/pkg/uuid"
)

// # Import Contract

// ImportRequest is one document to split into chapters and store.
type ImportRequest struct {
	BookID    string `json:"book_id"`   // Wins over every name source
	BookName  string `json:"book_name"` // Used when BookID is empty
	Title     string `json:"title"`     // Thread or file title, parsed for metadata
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`

	// Action settles every clash without an entry in Actions.
	Action     merge.Action            `json:"action"`
	Actions    map[string]merge.Action `json:"actions"`     // By "series:number" key
	NewNumbers map[string]int          `json:"new_numbers"` // By key, for new_number

	ToTraditional *bool `json:"to_traditional"`
	DryRun        bool  `json:"dry_run"` // Resolve without writing
	Verbose       bool  `json:"verbose"`
}

// ImportOutcome reports what happened to one detected chapter.
type ImportOutcome struct {
	Key             string        `json:"key"`
	Series          string        `json:"series"`
	Number          int           `json:"chapter_number"`
	IsFinal         bool          `json:"is_final"`
	Title           string        `json:"title"`
	Name            string        `json:"name"`
	LineStart       int           `json:"line_start"`
	LineEnd         int           `json:"line_end"`
	ContentLength   int           `json:"content_length"`
	Outcome         merge.Outcome `json:"outcome"`
	EffectiveNumber int           `json:"effective_number"`
	ChapterID       string        `json:"chapter_id,omitempty"` // Empty for skips and dry runs
}

// ImportResult is the outcome of a whole document.
type ImportResult struct {
	BookID   string          `json:"book_id"`
	BookName string          `json:"book_name"`
	Outcomes []ImportOutcome `json:"outcomes"`
}

// importOptions carries the per-call knobs shared by Import and Rescan.
type importOptions struct {
	action        merge.Action
	actions       map[string]merge.Action
	newNumbers    map[string]int
	sourceURL     string
	toTraditional bool
	verbose       bool

	// vacating is a chapter moving off its stored key during this call.
	vacating string
}

// plannedChapter is a candidate with its normalized body and resolution.
type plannedChapter struct {
	detected  string           // Key as found in the document
	candidate detect.Candidate // Carries the effective number after a renumber
	content   string
	existing  *Chapter
	decision  merge.Decision
	chapterID string
}

// # Import Pipeline

/*
Import runs the detection pipeline over one document.

Description: Detection, reformatting and conflict resolution run for every
candidate before the first write. The writes then commit together, so an
invalid action or a failed write leaves the store untouched.

Parameters:
  - context: context.Context
  - request: ImportRequest

Returns:
  - *ImportResult: One outcome per detected chapter, in document order
  - error: Validation errors, apperr.InvalidArgument for a bad action or
    when no book can be determined
*/
func (service *Service) Import(context context.Context, request ImportRequest) (*ImportResult, error) {
	validator := &validate.Validator{}
	validator.Required(FieldText, request.Text)
	validator.Custom(FieldAction, !request.Action.Valid(), "Unknown merge action")
	if request.BookID != "" {
		validator.UUID(FieldBookID, request.BookID)
	}
	if request.SourceURL != "" {
		validator.HTTPURL(FieldSourceURL, request.SourceURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var metadata *detect.Metadata
	if request.Title != "" {
		metadata = detect.ParseTitleMetadata(request.Title)
	}

	candidates := detect.DetectChapters(request.Text, detect.Options{FirstChapterMetadata: metadata})

	target, err := service.resolveBook(context, request, metadata, candidates)
	if err != nil {
		return nil, err
	}

	options := importOptions{
		action:        request.Action,
		actions:       request.Actions,
		newNumbers:    request.NewNumbers,
		sourceURL:     request.SourceURL,
		toTraditional: service.traditional(request.ToTraditional),
		verbose:       request.Verbose,
	}

	plan, err := service.plan(context, target.ID, candidates, options, map[string]bool{})
	if err != nil {
		return nil, err
	}

	if !request.DryRun {
		if err := service.apply(context, target.ID, plan, options); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{
		BookID:   target.ID,
		BookName: target.Name,
		Outcomes: slice.Map(plan, toOutcome),
	}

	service.logger.Info("document_imported",
		slog.String("book_id", target.ID),
		slog.Int("chapters", len(plan)),
		slog.Bool("dry_run", request.DryRun),
		slog.String("source_url", request.SourceURL),
	)

	return result, nil
}

// RescanResult is the outcome of re-running detection on a stored chapter.
type RescanResult struct {
	Chapter  *Chapter        `json:"chapter"`
	Outcomes []ImportOutcome `json:"outcomes"` // Extra chapters found inside the body
}

/*
Rescan re-runs detection on the body of a stored chapter.

Description: The first detected chapter updates the record in place. When
the body holds more than one chapter, the first takes its detected identity
and the rest import through keep_longest. A body with a single chapter keeps
its stored series and number.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - toTraditional: *bool (Nil uses the configured default)

Returns:
  - *RescanResult: The updated chapter and the outcomes of the extra chapters
  - error: apperr.Conflict when the detected key belongs to another chapter
*/
func (service *Service) Rescan(context context.Context, id string, toTraditional *bool) (*RescanResult, error) {
	chapter, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	candidates := detect.DetectChapters(chapter.Content, detect.Options{})
	if len(candidates) == 0 {
		return &RescanResult{Chapter: chapter, Outcomes: []ImportOutcome{}}, nil
	}

	first := candidates[0]
	if len(candidates) > 1 {
		chapter.Series = first.Series
		chapter.Number = first.Number
		chapter.IsFinal = first.IsFinal
		chapter.Title = first.Title
		chapter.TitleSimplified = first.TitleSimplified
	}
	if first.Name != "" {
		chapter.Name = first.Name
	}

	options := importOptions{
		action:        merge.ActionKeepLongest,
		sourceURL:     chapter.SourceURL,
		toTraditional: service.traditional(toTraditional),
		vacating:      chapter.ID,
	}

	if chapter.Content, err = service.reformatter.Reformat(first.Content, chapter.Heading(), options.toTraditional, false); err != nil {
		return nil, err
	}

	plan, err := service.plan(context, chapter.BookID, candidates[1:], options, map[string]bool{chapter.Key(): true})
	if err != nil {
		return nil, err
	}

	if err := service.apply(context, chapter.BookID, plan, options, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_rescanned",
		slog.String("chapter_id", chapter.ID),
		slog.String("key", chapter.Key()),
		slog.Int("extra_chapters", len(plan)),
	)

	return &RescanResult{Chapter: chapter, Outcomes: slice.Map(plan, toOutcome)}, nil
}

// # Pipeline Stages

// resolveBook picks the book by explicit ID, then request name, then the
// names found in the title and the first heading.
func (service *Service) resolveBook(context context.Context, request ImportRequest, metadata *detect.Metadata, candidates []detect.Candidate) (*book.Book, error) {
	if request.BookID != "" {
		return service.books.GetBook(context, request.BookID)
	}

	name := strings.TrimSpace(request.BookName)
	if name == "" && metadata != nil {
		name = metadata.BookName
	}
	if name == "" && len(candidates) > 0 {
		name = candidates[0].ExtractedBookName
	}
	if name == "" {
		return nil, apperr.InvalidArgument("Book could not be determined; pass book_id or book_name")
	}

	return service.books.FindOrCreate(context, name, request.SourceURL)
}

/*
plan reformats every candidate and resolves it against the store. It
performs reads only.

Parameters:
  - claimed: map[string]bool (Keys already taken by this call, updated in place)
*/
func (service *Service) plan(context context.Context, bookID string, candidates []detect.Candidate, options importOptions, claimed map[string]bool) ([]*plannedChapter, error) {
	plan := make([]*plannedChapter, 0, len(candidates))

	// A renumbered chapter may not land on a key found later in the document
	for _, candidate := range candidates {
		claimed[candidate.Key()] = true
	}

	for _, candidate := range candidates {
		detected := candidate.Key()
		key := detected

		content, err := service.reformatter.Reformat(candidate.Content, headingOf(candidate.Title, candidate.Name), options.toTraditional, options.verbose)
		if err != nil {
			return nil, err
		}

		existing, err := service.findByKey(context, bookID, candidate.Series, candidate.Number)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID == options.vacating {
			existing = nil
		}

		action := options.action
		if chosen, ok := options.actions[key]; ok {
			action = chosen
		}

		var newNumber *int
		if number, ok := options.newNumbers[key]; ok {
			newNumber = &number
		}

		var snapshot *merge.Snapshot
		if existing != nil {
			snapshot = existing.snapshot()
		}

		decision, err := merge.Resolve(snapshot, merge.Snapshot{
			Series:        candidate.Series,
			Number:        candidate.Number,
			IsFinal:       candidate.IsFinal,
			ContentLength: textutil.RuneLen(content),
		}, action, newNumber)
		if err != nil {
			return nil, err
		}

		if decision.Outcome == merge.OutcomeRenumber {
			if err := service.checkRenumberTarget(context, bookID, candidate.Series, decision.EffectiveNumber, claimed); err != nil {
				return nil, err
			}
			key = detect.ChapterKey(candidate.Series, decision.EffectiveNumber, false)

			// The body must open with the heading of its new number
			candidate.Number = decision.EffectiveNumber
			candidate.IsFinal = false
			candidate.Title = detect.FormatTitle(candidate.Number, false)
			candidate.TitleSimplified = candidate.Title
			content, err = service.reformatter.Reformat(candidate.Content, headingOf(candidate.Title, candidate.Name), options.toTraditional, false)
			if err != nil {
				return nil, err
			}
		}

		claimed[key] = true

		plan = append(plan, &plannedChapter{
			detected:  detected,
			candidate: candidate,
			content:   content,
			existing:  existing,
			decision:  decision,
		})
	}

	return plan, nil
}

// checkRenumberTarget rejects a new number that is already in use.
func (service *Service) checkRenumberTarget(context context.Context, bookID, series string, number int, claimed map[string]bool) error {
	key := detect.ChapterKey(series, number, false)
	if claimed[key] {
		return apperr.Conflict(fmt.Sprintf("Chapter %s is already produced by this import", key))
	}

	occupant, err := service.findByKey(context, bookID, series, number)
	if err != nil {
		return err
	}
	if occupant != nil {
		return apperr.Conflict(fmt.Sprintf("Chapter %s already exists", key))
	}
	return nil
}

/*
apply writes a resolved plan as one unit. The extra updates are saved before
the plan, so a chapter moving off its key frees it first.

Returns:
  - error: The first failing write; nothing is stored then
*/
func (service *Service) apply(context context.Context, bookID string, plan []*plannedChapter, options importOptions, updates ...*Chapter) error {
	var creates []*Chapter

	for _, planned := range plan {
		candidate := planned.candidate

		switch planned.decision.Outcome {
		case merge.OutcomeUpdate:
			chapter := planned.existing
			chapter.Title = candidate.Title
			chapter.TitleSimplified = candidate.TitleSimplified
			if candidate.Name != "" {
				chapter.Name = candidate.Name
			}
			chapter.Content = planned.content
			chapter.Status = StatusDownloaded
			chapter.LineStart = candidate.LineStart
			chapter.LineEnd = candidate.LineEnd
			if options.sourceURL != "" {
				chapter.SourceURL = options.sourceURL
			}

			updates = append(updates, chapter)
			planned.chapterID = chapter.ID

		case merge.OutcomeCreate, merge.OutcomeRenumber:
			chapter := &Chapter{
				ID:              uuid.New(),
				BookID:          bookID,
				Series:          candidate.Series,
				Number:          candidate.Number,
				IsFinal:         candidate.IsFinal,
				Title:           candidate.Title,
				TitleSimplified: candidate.TitleSimplified,
				Name:            candidate.Name,
				Content:         planned.content,
				Status:          StatusDownloaded,
				SourceURL:       options.sourceURL,
				LineStart:       candidate.LineStart,
				LineEnd:         candidate.LineEnd,
			}

			creates = append(creates, chapter)
			planned.chapterID = chapter.ID
		}
	}

	if len(updates) == 0 && len(creates) == 0 {
		return nil
	}

	if err := service.repo.SaveAll(context, updates, creates); err != nil {
		return err
	}

	for _, planned := range plan {
		if planned.decision.Outcome == merge.OutcomeSkip {
			continue
		}
		service.logger.Info("chapter_imported",
			slog.String("book_id", bookID),
			slog.String("key", planned.detected),
			slog.String("outcome", string(planned.decision.Outcome)),
			slog.String("chapter_id", planned.chapterID),
		)
	}

	return nil
}

// findByKey returns nil without error when the key is free.
func (service *Service) findByKey(context context.Context, bookID, series string, number int) (*Chapter, error) {
	chapter, err := service.repo.FindByKey(context, bookID, series, number)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	return chapter, err
}

// # Helpers

func toOutcome(planned *plannedChapter) ImportOutcome {
	candidate := planned.candidate
	return ImportOutcome{
		Key:             planned.detected,
		Series:          candidate.Series,
		Number:          candidate.Number,
		IsFinal:         candidate.IsFinal,
		Title:           candidate.Title,
		Name:            candidate.Name,
		LineStart:       candidate.LineStart,
		LineEnd:         candidate.LineEnd,
		ContentLength:   textutil.RuneLen(planned.content),
		Outcome:         planned.decision.Outcome,
		EffectiveNumber: planned.decision.EffectiveNumber,
		ChapterID:       planned.chapterID,
	}
}

// joinBodies separates non-blank bodies with one blank line.
func joinBodies(bodies []string) string {
	kept := slice.Filter(bodies, func(body string) bool {
		return strings.TrimSpace(body) != ""
	})
	return strings.Join(kept, "\n\n")
}
