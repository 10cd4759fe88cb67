package moderation

import (
	"bufio"
	"bytes"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// WordList is the content of a word directory: one "<lang>.txt" file per language.
type WordList struct {
	Words     []string
	Languages []string
}

// LoadWords reads every .txt file of dir in fsys, one word per line.
// Blank lines are skipped and words are deduplicated across languages.
func LoadWords(fsys fs.FS, dir string) (WordList, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return WordList{}, err
	}

	var list WordList
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		list.Languages = append(list.Languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return WordList{}, err
		}
		// Scanner copes with \r\n endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" {
				continue
			}
			if _, ok := seen[word]; !ok {
				seen[word] = struct{}{}
				list.Words = append(list.Words, word)
			}
		}
		if err = scanner.Err(); err != nil {
			return WordList{}, err
		}
	}
	slices.Sort(list.Languages)
	return list, nil
}
