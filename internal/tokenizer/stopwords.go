package tokenizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var defaultStopWords = []string{
	// ru
	"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она", "так",
	"его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне", "было",
	"вот", "от", "меня", "еще", "нет", "о", "из", "ему", "когда", "даже", "ну", "ли", "если", "уже",
	"или", "ни", "быть", "был", "него", "до", "вас", "нибудь", "опять", "уж", "вам", "ведь", "там",
	"потом", "себя", "ничего", "ей", "может", "они", "тут", "где", "есть", "надо", "ней", "для",
	"мы", "тебя", "их", "чем", "была", "сам", "чтоб", "без", "будто", "чего", "раз", "тоже", "себе",
	"под", "будет", "тогда", "кто", "этот", "того", "потому", "этого", "какой", "совсем", "ним",
	"здесь", "этом", "один", "почти", "мой", "тем", "чтобы", "нее", "сейчас", "были", "куда",
	"зачем", "всех", "никогда", "можно", "при", "наконец", "два", "об", "другой", "хоть", "после",
	"над", "больше", "тот", "через", "эти", "нас", "про", "всего", "них", "какая", "много", "разве",
	"три", "эту", "моя", "впрочем", "хорошо", "свою", "этой", "перед", "иногда", "лучше", "чуть",
	"том", "нельзя", "такой", "им", "более", "всегда", "конечно", "всю", "между", "очень",
	"люблю", "нравится", "обожаю", "увлекаюсь",
	// en
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was",
	"one", "our", "out", "has", "have", "his", "how", "its", "may", "new", "now", "old", "see",
	"way", "who", "did", "get", "let", "she", "too", "use", "with", "this", "that", "from",
	"they", "will", "what", "when", "your", "which", "their", "there", "about", "would",
	"very", "much", "also", "into", "just", "like", "love", "some", "such", "than", "them", "then",
}

// StopWords is a set of normalized words excluded from word-mode comparison.
type StopWords struct {
	words Set
}

// NewStopWords normalizes the given words the same way Words does, so callers
// can pass natural word forms.
func NewStopWords(words ...string) StopWords {
	s := StopWords{words: make(Set, len(words))}
	s.add(words...)
	return s
}

// DefaultStopWords returns the built-in Russian and English stop list.
func DefaultStopWords() StopWords {
	return NewStopWords(defaultStopWords...)
}

func (s StopWords) Has(token string) bool {
	return s.words.Has(token)
}

func (s StopWords) Len() int { return s.words.Len() }

func (s *StopWords) add(words ...string) {
	if s.words == nil {
		s.words = make(Set, len(words))
	}
	for _, w := range words {
		if n := Normalize(w); n != "" {
			s.words[n] = struct{}{}
		}
	}
}

type stopWordsFile struct {
	StopWords []string `yaml:"stop-words"`
}

// LoadStopWords reads extra stop words from a YAML file and merges them with
// the defaults. The file holds either a plain sequence or a mapping with a
// "stop-words" key. An empty path yields the defaults.
func LoadStopWords(path string) (StopWords, error) {
	stop := DefaultStopWords()
	if path == "" {
		return stop, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return stop, fmt.Errorf("reading stop words file %q: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return stop, fmt.Errorf("parsing stop words file %q: %w", path, err)
	}

	// empty document
	if len(node.Content) == 0 {
		return stop, nil
	}

	var words []string
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&words); err != nil {
			return stop, fmt.Errorf("decoding stop words list: %w", err)
		}
	case yaml.MappingNode:
		var file stopWordsFile
		if err := node.Content[0].Decode(&file); err != nil {
			return stop, fmt.Errorf("decoding stop words mapping: %w", err)
		}
		words = file.StopWords
	default:
		return stop, fmt.Errorf("stop words file %q: expected a list or a mapping", path)
	}

	stop.add(words...)
	return stop, nil
}
