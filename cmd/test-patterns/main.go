// Test program to show which pattern fires for each noun of a few example
// sentences, using the in-process tagger
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/nounclass/internal/detect"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tagger"
)

var examples = []string{
	"She finally read the three-minute message from her sister and said nothing.",
	"He said the message lasted three minutes before the line went dead again.",
	"They heard the rumour that he was late for the ball, and laughed at it.",
	"The report that lasted two hours was read aloud to the whole assembly.",
	"A letter that she wrote was found on the table in the hall.",
}

func main() {
	fmt.Println("=== Pattern Detection Test ===")
	fmt.Println()

	sentences := examples
	if len(os.Args) > 1 {
		sentences = []string{strings.Join(os.Args[1:], " ")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tg := tagger.NewProseTagger(0)

	for _, sentence := range sentences {
		fmt.Printf("Sentence: %s\n", sentence)
		fmt.Println(strings.Repeat("-", 60))

		doc, err := tg.Tag(ctx, "example", sentence)
		if err != nil {
			fmt.Printf("  Tagging error: %v\n\n", err)
			continue
		}

		var tagged []string
		for _, tok := range doc.Tokens {
			tagged = append(tagged, tok.Text+"/"+string(tok.Tag))
		}
		fmt.Printf("  %s\n", strings.Join(tagged, " "))

		for i, tok := range doc.Tokens {
			if tok.Tag != model.POSNoun {
				continue
			}
			if !detect.InBounds(doc.Len(), i) {
				fmt.Printf("  - %-12s position %d at the document edge, not evaluated\n", tok.Text, i)
				continue
			}
			m, ok := detect.Classify(doc, i)
			if !ok {
				fmt.Printf("  - %-12s no pattern\n", tok.Text)
				continue
			}
			fmt.Printf("  ✓ %-12s %s (%s)\n", tok.Text, m.Kind, m.Detector)
		}
		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Println("\nNote: tags come from the prose perceptron mapped to UD;")
	fmt.Println("the classify command can use UDPipe instead.")
}
