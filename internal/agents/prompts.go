package agents

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/marketdata"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
)

// Role prompts for the four stage agents. Each demands a bare JSON object
// on output; the stage runner extracts and validates it against the stage
// schema before anything downstream sees it.

const directorPrompt = `You are a Trading Director AI, responsible for orchestrating the trading process.

Your primary objectives are:
1. Conduct in-depth market analysis to identify opportunities and challenges.
2. Develop comprehensive trading theses, encompassing both technical and fundamental aspects.
3. Make informed, data-driven decisions on trade direction.

For the stock under consideration, decide the overall market position and expected trend,
the key technical and fundamental factors influencing the stock's performance, and your
conviction in the call.

Respond with ONLY a JSON object, no markdown fences and no surrounding text:
{
  "direction": "long" | "short" | "hold",
  "confidence": number between 0 and 1,
  "rationale": "concise market thesis including the key factors"
}`

const quantPrompt = `You are a Quantitative Analysis AI, tasked with providing in-depth numerical
analysis to support trading decisions. Your primary objectives are:

1. Technical indicator analysis: evaluate the supplied indicators (RSI, EMA, MACD, ATR, ROC)
   to identify trends, patterns, and potential reversals.
2. Statistical pattern evaluation: mean reversion, momentum, and volatility analysis.
3. Trade success probability: score the probability of the thesis playing out.

You receive a trading thesis from the Director plus a market data snapshot. Your analysis
must build on that thesis, supporting or challenging it with the numbers.

Respond with ONLY a JSON object, no markdown fences and no surrounding text:
{
  "signals": { "indicator_name": number, ... },
  "probability_score": number between 0 and 1,
  "summary": "numerical insights supporting or challenging the thesis"
}`

const riskPrompt = `You are a Risk Assessment AI. Your primary objective is to evaluate and
mitigate potential risks associated with a given trade.

Your responsibilities include:
1. Evaluating position sizing to determine the optimal amount of capital to allocate.
2. Calculating potential drawdown to anticipate and prepare for potential losses.
3. Assessing market risk factors such as volatility and liquidity.

You receive the thesis and the quantitative analysis. The position size must never exceed
the stated allocation. Withhold approval when the risk is not acceptable.

Respond with ONLY a JSON object, no markdown fences and no surrounding text:
{
  "position_size": number (capital to deploy, in account currency),
  "stop_loss": number or null,
  "take_profit": number or null,
  "approved": true | false,
  "narrative": "risk metrics and reasoning behind the approval decision"
}`

const executionPrompt = `You are a Trade Execution AI. Your primary objective is to turn an approved
risk assessment into precise order parameters. Your key responsibilities include:

1. Generating structured order parameters: symbol, quantity, and price.
2. Determining order types: market or limit, based on conditions and strategy.
3. Specifying time constraints (time in force).

If the risk assessment was not approved, or no sensible trade exists, emit an explicit
no-trade decision instead of an order. Never invent an order for an unapproved assessment.

Respond with ONLY a JSON object, no markdown fences and no surrounding text:
{
  "no_trade": true | false,
  "order": null or {
    "side": "buy" | "sell",
    "type": "market" | "limit",
    "quantity": number,
    "limit_price": number or null,
    "time_in_force": "day" | "gtc" | "ioc"
  },
  "narrative": "execution reasoning"
}`

// agentContext prefixes every user prompt with the wall clock so agents
// reason against the current session, not their training cutoff
func agentContext() string {
	return fmt.Sprintf("Current time: %s\n\n", time.Now().UTC().Format(time.RFC3339))
}

func directorUserPrompt(task trade.Task, symbol string) string {
	var b strings.Builder
	b.WriteString(agentContext())
	fmt.Fprintf(&b, "Task: %s\n\n", task.Objective)
	fmt.Fprintf(&b, "Stock: %s\n", symbol)
	fmt.Fprintf(&b, "Allocation: %s\n", task.Allocation.String())
	return b.String()
}

func quantUserPrompt(thesis *trade.Thesis, snapshot *marketdata.Snapshot) string {
	var b strings.Builder
	b.WriteString(agentContext())
	fmt.Fprintf(&b, "Stock: %s\n", thesis.Symbol)
	fmt.Fprintf(&b, "Thesis from your Director: direction=%s confidence=%.2f\n%s\n\n",
		thesis.Direction, thesis.Confidence, thesis.Rationale)
	fmt.Fprintf(&b, "Market Data: %s\n\n", renderSnapshot(snapshot))
	fmt.Fprintf(&b, "Generate quantitative analysis for %s.\n", thesis.Symbol)
	return b.String()
}

func riskUserPrompt(task trade.Task, thesis *trade.Thesis, analysis *trade.Analysis) string {
	var b strings.Builder
	b.WriteString(agentContext())
	fmt.Fprintf(&b, "Stock: %s\n", thesis.Symbol)
	fmt.Fprintf(&b, "Allocation available: %s\n", task.Allocation.String())
	fmt.Fprintf(&b, "Thesis: direction=%s confidence=%.2f\n%s\n\n", thesis.Direction, thesis.Confidence, thesis.Rationale)
	fmt.Fprintf(&b, "Quant Analysis: %s\nSignals: %s\n\n", analysis.Summary, renderSignals(analysis.Signals))
	b.WriteString("Provide risk assessment including recommended position size, protective levels, and the approval decision.\n")
	return b.String()
}

func executionUserPrompt(thesis *trade.Thesis, risk *trade.RiskAssessment) string {
	var b strings.Builder
	b.WriteString(agentContext())
	fmt.Fprintf(&b, "Stock: %s\n", risk.Symbol)
	fmt.Fprintf(&b, "Thesis: direction=%s confidence=%.2f\n", thesis.Direction, thesis.Confidence)
	fmt.Fprintf(&b, "Risk Assessment: approved=%t position_size=%s\n%s\n",
		risk.Approved, risk.PositionSize.String(), risk.Narrative)
	if risk.StopLoss != nil {
		fmt.Fprintf(&b, "Stop loss: %s\n", risk.StopLoss.String())
	}
	if risk.TakeProfit != nil {
		fmt.Fprintf(&b, "Take profit: %s\n", risk.TakeProfit.String())
	}
	if !risk.Approved {
		b.WriteString("\nThe risk assessment was NOT approved. Emit a no-trade decision.\n")
	} else {
		b.WriteString("\nGenerate the trade order.\n")
	}
	return b.String()
}

func renderSnapshot(snapshot *marketdata.Snapshot) string {
	if snapshot == nil {
		return "unavailable"
	}
	return fmt.Sprintf("price=%.2f interval=%s signals=%s", snapshot.Price, snapshot.Interval, renderSignals(snapshot.Signals))
}

func renderSignals(signals map[string]float64) string {
	if len(signals) == 0 {
		return "{}"
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return "{}"
	}
	return string(data)
}
