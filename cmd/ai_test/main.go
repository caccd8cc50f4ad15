package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"go-vacancy-swipe/internal/ai"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Println("GROQ_API_KEY environment variable not set. Please set it to test the AI.")
		return
	}

	client := ai.NewGroqClient(ai.GroqConfig{APIKey: apiKey}, nil, logging.New("debug"))

	vacancy := `Senior Go Developer
Company: Acme Software, Kyiv.
We are looking for a Senior Go Backend Developer to join our product team.
Requirements:
- 3+ years of experience with Go (Golang)
- Experience with Kafka and Redis
- Strong knowledge of PostgreSQL and microservices
Salary: 4000-5000 USD. Fully remote work is possible, flexible schedule.`

	filters := models.Filters{
		models.FilterSalaryOnly: true,
		models.FilterRemoteOnly: true,
	}

	fmt.Println("Sending vacancy to Groq for classification...")
	verdict := client.Classify(context.Background(), vacancy, filters)

	fmt.Printf("\nValid:   %t\n", verdict.Valid)
	fmt.Printf("Reason:  %s\n", verdict.Reason)
	fmt.Printf("Summary: %s\n", verdict.Summary.Format())
}
