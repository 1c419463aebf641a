package gitrepo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const (
	headReflogPathConstant          = "logs/HEAD"
	reflogMessageSeparatorConstant  = "\t"
	readReflogErrorTemplateConstant = "failed to read HEAD reflog: %w"
)

// HeadReflogMessages returns the messages recorded in the HEAD reflog, newest first.
// Repositories without a reflog yield an empty slice.
func (repository *Repository) HeadReflogMessages() ([]string, error) {
	if repository.metadata == nil {
		return nil, nil
	}
	return readReflogMessages(repository.metadata, headReflogPathConstant)
}

func readReflogMessages(metadata billy.Filesystem, reflogPath string) ([]string, error) {
	reflogFile, openError := metadata.Open(reflogPath)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(readReflogErrorTemplateConstant, openError)
	}
	defer reflogFile.Close()

	var messages []string
	scanner := bufio.NewScanner(reflogFile)
	for scanner.Scan() {
		_, message, hasMessage := strings.Cut(scanner.Text(), reflogMessageSeparatorConstant)
		if !hasMessage {
			continue
		}
		messages = append(messages, message)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(readReflogErrorTemplateConstant, scanError)
	}

	for left, right := 0, len(messages)-1; left < right; left, right = left+1, right-1 {
		messages[left], messages[right] = messages[right], messages[left]
	}
	return messages, nil
}
