package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create scenarios table
			CREATE TABLE scenarios (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'paused', 'archived')),
				is_active BOOLEAN NOT NULL DEFAULT false,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				variables JSONB NOT NULL DEFAULT '{}',
				version INTEGER NOT NULL DEFAULT 1,
				executions_count INTEGER NOT NULL DEFAULT 0,
				successful_executions INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_scenarios_tenant_id ON scenarios(tenant_id);
			CREATE INDEX idx_scenarios_status ON scenarios(status);
			CREATE INDEX idx_scenarios_created_at ON scenarios(created_at);
			CREATE INDEX idx_scenarios_deleted_at ON scenarios(deleted_at);
		`,
		2: `
			-- Create scenario_triggers table
			CREATE TABLE scenario_triggers (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				scenario_id UUID NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				event_type VARCHAR(255) NOT NULL,
				conditions JSONB NOT NULL DEFAULT '[]',
				condition_logic VARCHAR(10) NOT NULL DEFAULT 'and',
				config JSONB NOT NULL DEFAULT '{}',
				channel_filter JSONB NOT NULL DEFAULT '[]',
				priority INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_scenario_triggers_tenant_event ON scenario_triggers(tenant_id, event_type);
			CREATE INDEX idx_scenario_triggers_scenario_id ON scenario_triggers(scenario_id);
			CREATE INDEX idx_scenario_triggers_priority ON scenario_triggers(priority DESC);
		`,
		3: `
			-- Create scenario_executions table
			CREATE TABLE scenario_executions (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				scenario_id UUID NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL,
				trigger_event VARCHAR(255) NOT NULL DEFAULT '',
				trigger_data JSONB NOT NULL DEFAULT '{}',
				result JSONB,
				error_message TEXT NOT NULL DEFAULT '',
				execution_log JSONB,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_scenario_executions_scenario_id ON scenario_executions(scenario_id);
			CREATE INDEX idx_scenario_executions_status ON scenario_executions(status);
			CREATE INDEX idx_scenario_executions_started_at ON scenario_executions(started_at);
		`,
	}
}
