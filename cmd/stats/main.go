// cmd/stats/main.go
package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/keshon/server-ghost/internal/config"
	"github.com/keshon/server-ghost/internal/storage"
	v "github.com/keshon/server-ghost/internal/version"
)

func main() {
	cfg := config.New()
	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%s STATS\n", strings.ToUpper(v.AppName))
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\nGENERAL STATS")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Total users: %d\n", stats.TotalUsers)
	fmt.Printf("Suspicious users: %d\n", stats.SuspiciousUsers)
	fmt.Printf("Total suspicions: %d\n", stats.TotalSuspicions)
	fmt.Printf("Messages received: %d\n", stats.TotalMessages)
	fmt.Printf("DM messages: %d\n", stats.DMMessages)
	fmt.Printf("Agent responses: %d\n", stats.AgentResponses)

	messages, responses, err := store.ActivitySince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nRECENT ACTIVITY (LAST 24H)")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Messages received: %d\n", messages)
	fmt.Printf("Responses sent: %d\n", responses)

	top, err := store.TopUsers(5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nTOP 5 USERS BY MESSAGES")
	fmt.Println(strings.Repeat("-", 40))
	for _, u := range top {
		if u.ServerName != "" {
			fmt.Printf("%s - %d messages (%s)\n", u.Username, u.Messages, u.ServerName)
		} else {
			fmt.Printf("%s - %d messages\n", u.Username, u.Messages)
		}
	}

	sus, err := store.RecentSuspicions(5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nRECENT SUSPICIONS")
	fmt.Println(strings.Repeat("-", 40))
	if len(sus) == 0 {
		fmt.Println("none")
	}
	for _, s := range sus {
		fmt.Printf("[%s] %s: %.60s\n", s.Datetime.Format("2006-01-02 15:04"), s.AuthorName, s.Content)
	}

	logs, err := store.RecentLogs(10)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nRECENT AGENT LOG")
	fmt.Println(strings.Repeat("-", 40))
	if len(logs) == 0 {
		fmt.Println("none")
	}
	for _, l := range logs {
		fmt.Printf("[%s] %s: %.80s\n", l.Datetime.Format("2006-01-02 15:04"), l.Kind, l.Message)
	}
	fmt.Println()
}
