package database

import (
    "context"
    "database/sql"
)

// schema holds the DDL for every table the service uses. Statements are
// idempotent (CREATE TABLE IF NOT EXISTS) so EnsureSchema can run at every
// startup. The uq_lancamento_periodo unique key enforces one lançamento per
// (indicador, unidade, ano, mes); the repository maps the resulting 1062
// driver error onto its duplicate sentinel.
var schema = []string{
    `CREATE TABLE IF NOT EXISTS unidades (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        nome          VARCHAR(100) NOT NULL,
        codigo        VARCHAR(20)  NOT NULL,
        ativo         TINYINT(1)   NOT NULL DEFAULT 1,
        criado_em     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        atualizado_em DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_unidade_nome (nome),
        UNIQUE KEY uq_unidade_codigo (codigo)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS usuarios (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        nome          VARCHAR(100) NOT NULL,
        email         VARCHAR(100) NOT NULL,
        senha_hash    VARCHAR(255) NOT NULL,
        role          VARCHAR(20)  NOT NULL DEFAULT 'operador',
        unidade_id    BIGINT UNSIGNED NOT NULL,
        ativo         TINYINT(1)   NOT NULL DEFAULT 1,
        ultimo_login  DATETIME     NULL,
        criado_em     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        atualizado_em DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_usuario_email (email),
        CONSTRAINT fk_usuario_unidade FOREIGN KEY (unidade_id) REFERENCES unidades(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS indicadores (
        id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        nome              VARCHAR(100) NOT NULL,
        descricao         TEXT,
        tipo              VARCHAR(50)  NOT NULL,
        unidade_medida    VARCHAR(50)  NOT NULL DEFAULT '',
        meta_mensal       DECIMAL(10,2) NULL,
        label_numerador   VARCHAR(100) NOT NULL DEFAULT '',
        label_denominador VARCHAR(100) NOT NULL DEFAULT '',
        ativo             TINYINT(1)   NOT NULL DEFAULT 1,
        criado_em         DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        atualizado_em     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS lancamentos (
        id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        indicador_id     BIGINT UNSIGNED NOT NULL,
        unidade_id       BIGINT UNSIGNED NOT NULL,
        usuario_id       BIGINT UNSIGNED NOT NULL,
        ano              INT NOT NULL,
        mes              INT NOT NULL,
        valor_numerador   DECIMAL(15,4) NOT NULL,
        valor_denominador DECIMAL(15,4) NOT NULL,
        observacoes      TEXT NULL,
        criado_em        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        atualizado_em    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_lancamento_periodo (indicador_id, unidade_id, ano, mes),
        KEY idx_lancamento_periodo (ano, mes),
        CONSTRAINT fk_lancamento_indicador FOREIGN KEY (indicador_id) REFERENCES indicadores(id),
        CONSTRAINT fk_lancamento_unidade FOREIGN KEY (unidade_id) REFERENCES unidades(id),
        CONSTRAINT fk_lancamento_usuario FOREIGN KEY (usuario_id) REFERENCES usuarios(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS refresh_tokens (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        usuario_id BIGINT UNSIGNED NOT NULL,
        token_hash CHAR(64)  NOT NULL,
        expires_at DATETIME  NOT NULL,
        revoked_at DATETIME  NULL,
        criado_em  DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_token_hash (token_hash),
        CONSTRAINT fk_token_usuario FOREIGN KEY (usuario_id) REFERENCES usuarios(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. It is safe to call on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
    for _, stmt := range schema {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return err
        }
    }
    return nil
}
