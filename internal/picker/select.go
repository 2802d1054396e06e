package picker

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

const promptBack = "back"

// PromptSelector asks the user to choose a document in the terminal.
type PromptSelector struct {
	Label string
	Size  int
}

func (s *PromptSelector) Select(docs []Document) (*Document, error) {
	items := make([]string, 0, len(docs)+1)
	for _, doc := range docs {
		items = append(items, documentLabel(doc))
	}
	items = append(items, promptBack)

	label := s.Label
	if label == "" {
		label = "Choose a resume from Google Drive and press ENTER"
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  s.Size,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return nil, ErrCancelled
		}
		return nil, err
	}

	if idx < 0 || idx >= len(docs) {
		return nil, ErrCancelled
	}

	doc := docs[idx]
	return &doc, nil
}

func documentLabel(doc Document) string {
	if doc.ModifiedTime == "" {
		return doc.Name
	}
	return fmt.Sprintf("%s (modified %s)", doc.Name, doc.ModifiedTime)
}
