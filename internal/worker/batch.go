package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// Verifier scores a single claim
type Verifier interface {
	Verify(ctx context.Context, claim string) (*model.VerifyResult, error)
}

// ClaimResult is the outcome of verifying one claim in a batch
type ClaimResult struct {
	Index   int
	Claim   string
	Result  *model.VerifyResult
	Error   error
	Elapsed time.Duration
}

// BatchProcessor verifies many claims concurrently
type BatchProcessor struct {
	verifier Verifier
	pool     *Pool[*ClaimResult]
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier: verifier,
		pool:     NewPool[*ClaimResult](concurrency),
	}
}

// ProcessClaims verifies claims concurrently and returns one result per
// claim in input order. Claims that never ran because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*ClaimResult {
	tasks := make([]Task[*ClaimResult], len(claims))
	for i, claim := range claims {
		tasks[i] = b.verifyTask(i, claim)
	}

	out, ran := b.pool.Run(ctx, tasks)
	for i := range out {
		if ran[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &ClaimResult{Index: i, Claim: claims[i], Error: fmt.Errorf("not run: %w", err)}
	}

	return out
}

func (b *BatchProcessor) verifyTask(index int, claim string) Task[*ClaimResult] {
	return func(ctx context.Context) *ClaimResult {
		start := time.Now()
		result, err := b.verifier.Verify(ctx, claim)
		return &ClaimResult{
			Index:   index,
			Claim:   claim,
			Result:  result,
			Error:   err,
			Elapsed: time.Since(start),
		}
	}
}

// ProcessFile reads claims from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClaimResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads claims from a file (one per line).
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
