package wsbridge

import "fmt"

func (c *Client) registerHandlers() {
	c.handlers[TypeGetConfig] = c.handleGetConfig
	c.handlers[TypeGetCycles] = c.handleGetCycles
	c.handlers[TypeGetCycle] = c.handleGetCycle
}

func (c *Client) handleGetConfig(env *Envelope) (*Envelope, error) {
	return NewResponse(env.RequestID, TypeGetConfigResult, &GetConfigResultPayload{
		Config: ConfigToInstanceConfig(c.cfg),
	})
}

func (c *Client) handleGetCycles(env *Envelope) (*Envelope, error) {
	payload := GetCyclesPayload{Limit: 20}
	if len(env.Payload) > 0 {
		if err := DecodePayload(env, &payload); err != nil {
			return nil, fmt.Errorf("decode get_cycles: %w", err)
		}
	}
	if payload.Limit <= 0 {
		payload.Limit = 20
	}

	cycles, total, err := c.stores.Cycles.ListCycles(payload.Limit, payload.Offset)
	if err != nil {
		return nil, err
	}

	result := GetCyclesResultPayload{Total: total, Cycles: []CycleInfo{}}
	for _, cy := range cycles {
		result.Cycles = append(result.Cycles, cycleToInfo(cy))
	}
	return NewResponse(env.RequestID, TypeGetCyclesResult, &result)
}

func (c *Client) handleGetCycle(env *Envelope) (*Envelope, error) {
	var payload GetCyclePayload
	if err := DecodePayload(env, &payload); err != nil {
		return nil, fmt.Errorf("decode get_cycle: %w", err)
	}

	cycle, err := c.stores.Cycles.GetCycle(payload.CycleID)
	if err != nil {
		return nil, err
	}
	attempts, err := c.stores.Attempts.GetAttemptsByCycle(payload.CycleID)
	if err != nil {
		return nil, err
	}

	result := GetCycleResultPayload{Cycle: cycleToInfo(*cycle), Attempts: []AttemptInfo{}}
	for _, a := range attempts {
		result.Attempts = append(result.Attempts, attemptToInfo(a))
	}
	return NewResponse(env.RequestID, TypeGetCycleResult, &result)
}
