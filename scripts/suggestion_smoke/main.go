// Command suggestion_smoke exercises the full suggestion round-trip
// against a running API instance: suggest, re-suggest, and commit. It is
// a development aid, not a test; it needs a seeded database.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type suggestResponse struct {
	Data struct {
		Token       string   `json:"token"`
		Status      string   `json:"status"`
		Confidence  float64  `json:"confidence"`
		Diagnostics []string `json:"diagnostics"`
		Suggestions []struct {
			SlotID    int64  `json:"slot_id"`
			CoachName string `json:"coach_name"`
			Date      string `json:"date"`
			StartHour int    `json:"start_hour"`
		} `json:"suggestions"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type commitResponse struct {
	Data struct {
		Committed int `json:"committed"`
		Failed    int `json:"failed"`
		Results   []struct {
			SlotID int64  `json:"slotId"`
			Booked bool   `json:"booked"`
			Reason string `json:"reason"`
		} `json:"results"`
	} `json:"data"`
}

func main() {
	var (
		base        string
		clientID    int64
		numSessions int
		commit      bool
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.Int64Var(&clientID, "client", 1, "client id to request suggestions for")
	flag.IntVar(&numSessions, "sessions", 2, "number of sessions to request")
	flag.BoolVar(&commit, "commit", false, "commit the first suggestion as a booking")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	prefix := strings.TrimRight(base, "/") + "/api/v1"

	var first suggestResponse
	postJSON(client, prefix+"/suggestions",
		map[string]interface{}{"clientId": clientID, "numSessions": numSessions}, &first)
	report("suggest", first)
	if first.Data.Token == "" {
		fmt.Println("no session opened, stopping")
		os.Exit(1)
	}

	var second suggestResponse
	postJSON(client, prefix+"/suggestions/re-suggest",
		map[string]interface{}{"clientId": clientID, "token": first.Data.Token}, &second)
	report("re-suggest", second)

	for _, sg := range second.Data.Suggestions {
		for _, prev := range first.Data.Suggestions {
			if sg.SlotID == prev.SlotID {
				fmt.Printf("FAIL: slot %d repeated across re-suggestion\n", sg.SlotID)
				os.Exit(1)
			}
		}
	}

	if !commit {
		fmt.Println("done (dry run, pass -commit to book)")
		return
	}
	if len(second.Data.Suggestions) == 0 {
		fmt.Println("nothing to commit")
		os.Exit(1)
	}

	var booked commitResponse
	postJSON(client, prefix+"/bookings/commit", map[string]interface{}{
		"clientId": clientID,
		"token":    first.Data.Token,
		"slotIds":  []int64{second.Data.Suggestions[0].SlotID},
	}, &booked)
	fmt.Printf("commit: %d booked, %d rejected\n", booked.Data.Committed, booked.Data.Failed)
	for _, res := range booked.Data.Results {
		if !res.Booked {
			fmt.Printf("  slot %d rejected: %s\n", res.SlotID, res.Reason)
		}
	}
}

func postJSON(client *http.Client, url string, payload interface{}, out interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Fatalf("decode response from %s (status %d): %v", url, resp.StatusCode, err)
	}
}

func report(step string, resp suggestResponse) {
	if resp.Error != nil {
		fmt.Printf("%s: error %s: %s\n", step, resp.Error.Code, resp.Error.Message)
		return
	}
	fmt.Printf("%s: %s (confidence %.2f), %d suggestion(s)\n",
		step, resp.Data.Status, resp.Data.Confidence, len(resp.Data.Suggestions))
	for _, sg := range resp.Data.Suggestions {
		fmt.Printf("  slot %d with %s on %s at %02d:00\n", sg.SlotID, sg.CoachName, sg.Date, sg.StartHour)
	}
	for _, d := range resp.Data.Diagnostics {
		fmt.Printf("  note: %s\n", d)
	}
}
