package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	studify "github.com/joaquimnetomagalhaes2011-lab/App-de-estudos"
)

func main() {
	var (
		subject    = flag.String("subject", "", "Quiz subject (required unless -history)")
		difficulty = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		history    = flag.Bool("history", false, "Print stored quiz and essay history and exit")
		logLLM     = flag.Bool("log-llm", false, "Write the completion interactions to log/")
	)

	flag.Parse()

	cfg, err := studify.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := studify.NewLogger(cfg)
	defer log.Sync()

	store, err := studify.OpenStore(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	if *history {
		printHistory(store)
		return
	}

	if *subject == "" {
		log.Fatal("subject is required, use -subject")
	}
	if cfg.OpenAI.APIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}

	client := studify.NewCompletionClient(cfg.OpenAI, log)
	if *logLLM {
		llmLog, err := studify.NewCompletionLogger(uuid.NewString())
		if err != nil {
			log.Warn("completion logging disabled", zap.Error(err))
		} else {
			client.SetCompletionLogger(llmLog)
			defer llmLog.Close()
		}
	}

	quiz := studify.NewQuizSession(client, store, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Generating a %s quiz about %q...\n", studify.ParseDifficulty(*difficulty), *subject)
	if err := quiz.Start(ctx, *subject, studify.ParseDifficulty(*difficulty)); err != nil {
		log.Fatal("failed to start quiz", zap.Error(err))
	}

	playQuiz(quiz)
}

// playQuiz runs the answer/advance loop on the terminal until the session
// reaches the result step.
func playQuiz(quiz *studify.QuizSession) {
	reader := bufio.NewReader(os.Stdin)

	for quiz.Step() == studify.StepPlaying {
		question, ok := quiz.CurrentQuestion()
		if !ok {
			break
		}

		fmt.Printf("\nQuestion %d of %d:\n%s\n\n", quiz.CurrentIndex()+1, len(quiz.Questions()), question.QuestionText)
		for i, option := range question.Options {
			fmt.Printf("  %d. %s\n", i+1, option)
		}

		answer := readAnswer(reader, len(question.Options))
		if err := quiz.Answer(answer); err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}

		if answer == question.CorrectOptionIndex {
			fmt.Println("\nCorrect!")
		} else {
			fmt.Printf("\nIncorrect. The correct answer was %d.\n", question.CorrectOptionIndex+1)
		}
		fmt.Printf("Explanation: %s\n", question.Explanation)

		if err := quiz.Advance(); err != nil {
			fmt.Printf("failed to advance: %v\n", err)
			return
		}
	}

	if result, ok := quiz.Result(); ok {
		fmt.Printf("\nQuiz complete! You scored %d out of %d (%d%%).\n",
			result.Score, result.TotalQuestions, quiz.Percentage())
		fmt.Println("Result saved to history.")
	}
}

// readAnswer prompts until the user enters a number between 1 and max.
func readAnswer(reader *bufio.Reader, max int) int {
	for {
		fmt.Printf("\nYour answer (1-%d): ", max)
		line, err := reader.ReadString('\n')
		if err != nil {
			os.Exit(1)
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > max {
			fmt.Printf("Please enter a number between 1 and %d.\n", max)
			continue
		}
		return n - 1
	}
}

func printHistory(store *studify.Store) {
	quizzes, err := store.QuizHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load quiz history: %v\n", err)
		os.Exit(1)
	}
	essays, err := store.EssayHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load essay history: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Quiz history (%d):\n", len(quizzes))
	for _, q := range quizzes {
		fmt.Printf("  %s  %-30s %-6s %d/%d\n",
			q.Date.Format("2006-01-02 15:04"), q.Subject, q.Difficulty, q.Score, q.TotalQuestions)
	}

	fmt.Printf("\nEssay history (%d):\n", len(essays))
	for _, e := range essays {
		fmt.Printf("  %s  %-30s %d/100 (%s)\n",
			e.Date.Format("2006-01-02 15:04"), e.Topic, e.Score, studify.ScoreTier(e.Score))
	}
}
