package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		addr = flag.String("addr", "http://localhost:8899", "finova-node HTTP address")

		cmdInit  = flag.Bool("init", false, "Initialize a user account")
		pubkey   = flag.String("pubkey", "", "Signer pubkey (hex)")
		referrer = flag.String("referrer", "", "Referrer pubkey (hex), optional")

		cmdClaim     = flag.Bool("claim", false, "Claim settled mining rewards")
		tokenAccount = flag.String("token-account", "", "Token account to receive minted rewards (hex)")

		cmdStake   = flag.Bool("stake", false, "Stake whole tokens")
		cmdUnstake = flag.Bool("unstake", false, "Unstake whole tokens, penalized if still within the lockup")
		amount     = flag.Uint64("amount", 0, "Whole-token amount for stake/unstake")

		cmdVote    = flag.Bool("vote", false, "Cast a governance vote")
		proposalID = flag.Uint64("proposal", 0, "Proposal id to vote on")
		choice     = flag.Uint("choice", 0, "Vote choice")

		cmdNetwork = flag.Bool("network", false, "Print the current network snapshot")
		cmdPause   = flag.Bool("pause", false, "Set the network pause flag")
		pauseFlag  = flag.Bool("flag", true, "Pause state to set with -pause")

		cmdActivity  = flag.Bool("activity", false, "Submit an off-chain activity report")
		activityFile = flag.String("activity-file", "", "Path to a JSON file with {\"report\":...,\"attestation\":...}")

		cmdNFTMint = flag.Bool("nft-mint", false, "Mint an effect card")
		cmdNFTUse  = flag.Bool("nft-use", false, "Use an effect card")
		cardToken  = flag.String("card-token", "", "Card token pubkey (hex)")
		owner      = flag.String("owner", "", "Card owner pubkey (hex), for -nft-mint")
		authority  = flag.String("authority", "", "Card-minting authority pubkey (hex), for -nft-mint")
		kind       = flag.Uint("kind", 0, "Effect kind, for -nft-mint")
		magnitude  = flag.Uint("magnitude-micro", 0, "Effect magnitude in micro-units, for -nft-mint")
		duration   = flag.Int64("duration-seconds", 0, "Effect duration in seconds, for -nft-mint")
		uses       = flag.Uint("uses", 1, "Uses remaining, for -nft-mint")
		rarity     = flag.Uint("rarity", 0, "Card rarity, for -nft-mint")
		singleUse  = flag.Bool("single-use", false, "Whether the card is single-use, for -nft-mint")
		stackable  = flag.Bool("stackable", false, "Whether the effect coexists with another active instance of the same kind, for -nft-mint")
	)
	flag.Parse()

	client := &client{addr: *addr, http: &http.Client{Timeout: 10 * time.Second}}

	switch {
	case *cmdInit:
		client.initializeUser(*pubkey, *referrer)
	case *cmdClaim:
		client.claim(*pubkey, *tokenAccount)
	case *cmdStake:
		client.stake(*pubkey, *amount)
	case *cmdUnstake:
		client.unstake(*pubkey, *amount)
	case *cmdVote:
		client.vote(*pubkey, *proposalID, uint8(*choice))
	case *cmdNetwork:
		client.networkState()
	case *cmdPause:
		client.pause(*pauseFlag)
	case *cmdActivity:
		client.submitActivity(*pubkey, *activityFile)
	case *cmdNFTMint:
		client.mintCard(*authority, *owner, *cardToken, uint8(*kind), uint32(*magnitude), *duration, uint8(*uses), uint8(*rarity), *singleUse, *stackable)
	case *cmdNFTUse:
		client.useCard(*cardToken, *pubkey)
	default:
		printHelp()
	}
}

// client wraps finova-node's HTTP surface for a single CLI invocation.
type client struct {
	addr string
	http *http.Client
}

func (c *client) post(path string, body interface{}) (map[string]interface{}, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	resp, err := c.http.Post(c.addr+path, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

func (c *client) get(path string) (map[string]interface{}, error) {
	resp, err := c.http.Get(c.addr + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (map[string]interface{}, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("malformed response (status %d): %s", resp.StatusCode, string(data))
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("request failed with status %d: %v", resp.StatusCode, out["error"])
	}
	return out, nil
}

func (c *client) initializeUser(pubkey, referrer string) {
	if pubkey == "" {
		fmt.Println("Error: -pubkey is required")
		return
	}
	body := map[string]string{}
	if referrer != "" {
		body["referrer"] = referrer
	}
	out, err := c.post(fmt.Sprintf("/v1/users/%s/initialize", pubkey), body)
	report("initialize", out, err)
}

func (c *client) claim(pubkey, tokenAccount string) {
	if pubkey == "" || tokenAccount == "" {
		fmt.Println("Error: -pubkey and -token-account are required")
		return
	}
	out, err := c.post(fmt.Sprintf("/v1/users/%s/claim", pubkey), map[string]string{"tokenAccount": tokenAccount})
	report("claim", out, err)
}

func (c *client) stake(pubkey string, amount uint64) {
	if pubkey == "" {
		fmt.Println("Error: -pubkey is required")
		return
	}
	out, err := c.post(fmt.Sprintf("/v1/users/%s/stake", pubkey), map[string]uint64{"amountWholeToken": amount})
	report("stake", out, err)
}

func (c *client) unstake(pubkey string, amount uint64) {
	if pubkey == "" {
		fmt.Println("Error: -pubkey is required")
		return
	}
	out, err := c.post(fmt.Sprintf("/v1/users/%s/unstake", pubkey), map[string]uint64{"amountWholeToken": amount})
	report("unstake", out, err)
}

func (c *client) vote(pubkey string, proposalID uint64, choice uint8) {
	if pubkey == "" {
		fmt.Println("Error: -pubkey is required")
		return
	}
	out, err := c.post(fmt.Sprintf("/v1/users/%s/vote", pubkey), map[string]interface{}{
		"proposalId": proposalID,
		"choice":     choice,
	})
	report("vote", out, err)
}

func (c *client) networkState() {
	out, err := c.get("/v1/network")
	report("network", out, err)
}

func (c *client) pause(flag bool) {
	out, err := c.post("/v1/network/pause", map[string]bool{"flag": flag})
	report("pause", out, err)
}

func (c *client) submitActivity(pubkey, file string) {
	if pubkey == "" || file == "" {
		fmt.Println("Error: -pubkey and -activity-file are required")
		return
	}
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "activity failed: %v\n", err)
		os.Exit(1)
	}
	var body json.RawMessage = data
	out, err := c.post(fmt.Sprintf("/v1/users/%s/activity", pubkey), body)
	report("activity", out, err)
}

func (c *client) mintCard(authority, owner, cardToken string, kind uint8, magnitudeMicro uint32, durationSeconds int64, uses, rarity uint8, singleUse, stackable bool) {
	if authority == "" || owner == "" || cardToken == "" {
		fmt.Println("Error: -authority, -owner and -card-token are required")
		return
	}
	out, err := c.post("/v1/nft/cards", map[string]interface{}{
		"authority":       authority,
		"owner":           owner,
		"cardToken":       cardToken,
		"kind":            kind,
		"magnitudeMicro":  magnitudeMicro,
		"durationSeconds": durationSeconds,
		"uses":            uses,
		"rarity":          rarity,
		"singleUse":       singleUse,
		"stackable":       stackable,
	})
	report("nft-mint", out, err)
}

func (c *client) useCard(cardToken, caller string) {
	if cardToken == "" || caller == "" {
		fmt.Println("Error: -card-token and -pubkey are required")
		return
	}
	out, err := c.post(fmt.Sprintf("/v1/nft/cards/%s/use", cardToken), map[string]string{"caller": caller})
	report("nft-use", out, err)
}

func report(op string, out map[string]interface{}, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", op, err)
		os.Exit(1)
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

func printHelp() {
	fmt.Println("finova-cli: HTTP client for a finova-node")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  -init             Initialize a user account")
	fmt.Println("  -claim            Claim settled mining rewards")
	fmt.Println("  -stake            Stake whole tokens")
	fmt.Println("  -unstake          Unstake whole tokens, penalized if still within the lockup")
	fmt.Println("  -vote             Cast a governance vote")
	fmt.Println("  -network          Print the current network snapshot")
	fmt.Println("  -pause            Set the network pause flag")
	fmt.Println("  -activity         Submit an off-chain activity report")
	fmt.Println("  -nft-mint         Mint an effect card")
	fmt.Println("  -nft-use          Use an effect card")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -addr             finova-node HTTP address (default http://localhost:8899)")
	fmt.Println("  -pubkey           Signer pubkey (hex)")
	fmt.Println("  -referrer         Referrer pubkey (hex), for -init")
	fmt.Println("  -token-account    Token account to receive minted rewards, for -claim")
	fmt.Println("  -amount           Whole-token amount, for -stake/-unstake")
	fmt.Println("  -proposal         Proposal id, for -vote")
	fmt.Println("  -choice           Vote choice, for -vote")
	fmt.Println("  -flag             Pause state to set, for -pause (default true)")
	fmt.Println("  -activity-file    Path to a JSON body for -activity")
	fmt.Println("  -card-token       Card token pubkey (hex), for -nft-mint/-nft-use")
	fmt.Println("  -owner            Card owner pubkey (hex), for -nft-mint")
	fmt.Println("  -authority        Card-minting authority pubkey (hex), for -nft-mint")
	fmt.Println("  -kind             Effect kind, for -nft-mint")
	fmt.Println("  -magnitude-micro  Effect magnitude in micro-units, for -nft-mint")
	fmt.Println("  -duration-seconds Effect duration in seconds, for -nft-mint")
	fmt.Println("  -uses             Uses remaining, for -nft-mint (default 1)")
	fmt.Println("  -rarity           Card rarity, for -nft-mint")
	fmt.Println("  -single-use       Whether the card is single-use, for -nft-mint")
	fmt.Println("  -stackable        Whether the effect coexists with another active instance of the same kind, for -nft-mint")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  finova-cli -init -pubkey 0x...")
	fmt.Println("  finova-cli -stake -pubkey 0x... -amount 500")
	fmt.Println("  finova-cli -network")
}
