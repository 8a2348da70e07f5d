package config

import (
	"log/slog"
	"time"
)

const databaseSystemPrompt = `You are a database assistant with the ability to query and manage SQLite databases`

const web3SystemPrompt = `You are a Web3 domain expert assistant with comprehensive knowledge and real-time search capabilities using Tavily tools.

Your expertise covers blockchain technology, DeFi protocols, NFTs and digital assets,
cryptocurrency markets, governance and DAOs, smart contract security, market trends and
dApp development.

You MUST use the tavily-search tool before answering any question:

1. Search with parameters suited to the question: topic="news" with a short time_range
   for market data and breaking news, topic="general" with search_depth="advanced" for
   technical topics. Use max_results between 15 and 20.
2. When results contain relevant URLs, use tavily-extract on the 3 to 5 most relevant ones.
3. If the information is not sufficient, search again with different terms or time ranges,
   at most 3 searches in total.
4. Combine the results with your own knowledge, cite the sources and URLs, and point out
   what is recent.

If nothing relevant is found after 3 searches, say so explicitly, give the foundational
knowledge you have, and suggest other search terms.`

const databaseHelp = `Supported Operations:
  - Query table structure: SELECT * FROM sqlite_master WHERE type='table';
  - Create table: CREATE TABLE table_name (column1 TYPE, column2 TYPE);
  - Insert data: INSERT INTO table_name (column1, column2) VALUES (value1, value2);
  - Query data: SELECT * FROM table_name;
  - Update data: UPDATE table_name SET column1=value1 WHERE condition;
  - Delete data: DELETE FROM table_name WHERE condition;

Multi-turn Conversation: supports context memory, can reference previous operations.`

const web3Help = `Blockchain & Technology:
  - Ask about consensus mechanisms, smart contracts, Layer 2 solutions
  - Technical deep-dives into blockchain protocols

DeFi & Protocols:
  - DeFi protocol analysis, yield farming strategies
  - AMM mechanics, liquidity provision, impermanent loss

Trading & Markets:
  - Market analysis, trading strategies, tokenomics
  - Price predictions, technical analysis

NFTs & Digital Assets:
  - NFT market trends, valuation, utility
  - Gaming assets, metaverse developments

Security & Safety:
  - Smart contract security, wallet safety
  - How to avoid scams and common pitfalls

Development:
  - Solidity programming, dApp development
  - Web3 integration, testing frameworks

Multi-turn Conversation: Maintains context for complex discussions.`

// Default returns the configuration written on the first run.
func Default() *Config {
	return &Config{
		Assistant:     "database",
		LogLevel:      slog.LevelDebug,
		HistorySize:   3,
		TurnTimeout:   5 * time.Minute,
		ToolTimeout:   time.Minute,
		MaxToolRounds: 8,
		Backends: []map[string]any{
			{
				"type":        "openai",
				"name":        "openrouter",
				"base_url":    "https://openrouter.ai/api/v1",
				"api_key_env": "OPENROUTER_API_KEY",
				"model_name":  "openai/gpt-4.1",
			},
		},
		Assistants: []Assistant{
			{
				Name:         "database",
				Title:        "Database Assistant",
				Description:  "Database Query and Management",
				Backend:      "openrouter",
				SystemPrompt: databaseSystemPrompt,
				Help:         databaseHelp,
				Suggestions: []string{
					"Show all tables in the database",
					"Create a students table with name and age columns",
					"Insert a student named Alice, age 20",
					"Query all student information",
					"Delete the student named Alice",
				},
				MCP: []MCPConfig{
					{
						Name:    "sqlite",
						Command: "uvx",
						Args:    []string{"mcp-server-sqlite", "--db-path", "test.db"},
					},
				},
			},
			{
				Name:         "web3",
				Title:        "Web3 Expert Assistant",
				Description:  "Web3 research with real-time search",
				Backend:      "openrouter",
				SystemPrompt: web3SystemPrompt,
				Help:         web3Help,
				Suggestions: []string{
					"What are the latest developments in Ethereum Layer 2 solutions?",
					"Explain how Uniswap V4 hooks work",
					"Current DeFi yield farming opportunities",
					"Security best practices for smart contract development",
					"Latest NFT market trends and analysis",
					"How to safely interact with new DeFi protocols",
				},
				BuiltinTools: []string{"get_current_time"},
				MCP: []MCPConfig{
					{
						Name:    "tavily-mcp",
						Command: "npx",
						Args:    []string{"-y", "tavily-mcp@0.1.2"},
						Env: map[string]string{
							"TAVILY_API_KEY": "${TAVILY_API_KEY}",
						},
					},
				},
			},
		},
	}
}
