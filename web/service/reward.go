package service

import (
	"strings"

	"vvotes/config"
	"vvotes/logger"

	"github.com/gorcon/rcon"
)

// RewardService delivers reward command strings to the game server
// console over RCON. Dispatch is attempted only after the owning
// storage transaction has committed; a delivery failure is logged and
// never retried, since the claim backing the reward is already
// durable (known limitation, see README).
type RewardService struct {
	// execute is swappable in tests; defaults to RCON delivery.
	execute func(command string) error
}

func NewRewardService() *RewardService {
	s := &RewardService{}
	s.execute = s.executeRcon
	return s
}

// Dispatch expands <key> placeholders in each template and sends the
// result. Blank results are skipped.
func (s *RewardService) Dispatch(commands []string, placeholders map[string]string) {
	if len(commands) == 0 {
		return
	}
	pairs := make([]string, 0, len(placeholders)*2)
	for key, value := range placeholders {
		pairs = append(pairs, "<"+key+">", value)
	}
	replacer := strings.NewReplacer(pairs...)

	for _, command := range commands {
		parsed := strings.TrimSpace(replacer.Replace(command))
		if parsed == "" {
			continue
		}
		if err := s.execute(parsed); err != nil {
			logger.Warning("reward dispatch failed:", err)
		}
	}
}

func (s *RewardService) executeRcon(command string) error {
	addr := config.GetRconAddr()
	if addr == "" {
		// No console configured: log the command so operators can see
		// what would have run.
		logger.Info("reward (no rcon configured):", command)
		return nil
	}
	conn, err := rcon.Dial(addr, config.GetRconPassword())
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Execute(command)
	return err
}
